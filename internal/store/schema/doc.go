// Package schema defines the task record and the validation applied before
// any write.
//
// # Task Rows
//
// A task is stored as a single row:
//
//	{
//	  "id": "4d1c7a2e-...",
//	  "title": "Buy milk",
//	  "description": "2%",
//	  "due_date": "2024-06-01",
//	  "category": "errands",
//	  "status": "new",
//	  "created_at": "2024-05-30T09:12:44.120Z",
//	  "deleted": false
//	}
//
// # Validation
//
// Validate is shared by the create and update paths:
//
//	if err := schema.Validate(title, description, due); err != nil {
//	    var verr *schema.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Println(verr.Reason) // "title required", ...
//	    }
//	}
//
// Due dates are checked against YYYY-MM-DD only. Calendar validity is not
// checked, so "2024-13-40" passes.
//
// # Soft Delete
//
// Deleted is a flag, never a physical delete. It is flipped by the store's
// toggle operation and is independent of Status: a task can be done and
// deleted at the same time.
package schema
