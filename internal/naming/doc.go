// Package naming turns untrusted catalog titles into safe file names.
//
// Every artifact path is derived from the catalog title alone:
//
//	outputRoot/<Bucket>/<Identifier>.md
//
// Sanitize produces the Identifier, BucketOf derives the first-character
// partition, and Namer resolves titles that collide after sanitization.
//
// Design decision: Naming is a pure function of the title so that the
// destination of an entry is known before any network request is made.
// That property is what makes runs resumable: an existing file at the
// computed destination means the entry is already done.
package naming
