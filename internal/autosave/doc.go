// Package autosave protects unsubmitted field content.
//
// A Controller is bound to one editable field. On construction it looks for a
// draft left by an earlier session and, when the draft differs from the
// field, asks a recovery.Prompt whether to restore it. While started, it
// persists the field's content to a draftstore.Store on every tick in which
// the content changed. Submitting the field's form clears the draft.
//
// A Registrar builds controllers from explicit registrations and groups them
// by form:
//
//	reg := autosave.NewRegistrar(store, recovery.NewTerminal())
//	reg.Register(ctx, autosave.Registration{Field: body, FormID: "note"})
//	reg.Start(ctx)
//	defer reg.Close()
//	...
//	reg.Submit(ctx, "note")
//
// Fields are independent: each has its own key, timer and state.
package autosave
