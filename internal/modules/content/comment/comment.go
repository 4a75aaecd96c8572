// Package comment stores the visitor comments shown under each post.
//
// Files in this package:
//   - types.go   : form binding and sentinel errors
//   - service.go : Service with create and list queries
package comment
