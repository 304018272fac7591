// Package credentials persists local account records in a JSON document
// under the user data directory.
//
// # File format
//
//	{
//	  "alice": {"salt": "<base64>", "hash": "<base64>", "iters": 200000}
//	}
//
// A missing file is an empty user set. Writes replace the whole document via
// a temp file and rename, so a crash never leaves a half-written file.
//
// # Limitations
//
// The store is read-modify-write over the whole document. Writes from one
// process are serialized, but two processes creating accounts at the same
// time race and the last writer wins. There is no cross-process lock.
package credentials
