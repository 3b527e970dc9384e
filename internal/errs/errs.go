// Package errs defines the error shapes returned to API clients.
//
// Every failing request ends up as an HTTPError serialized as
//
//	{"code": "...", "message": "...", "status": 400, "override": false, "errors": [], "action": null}
//
// so clients can branch on Code, show Message, and highlight field errors.
package errs
