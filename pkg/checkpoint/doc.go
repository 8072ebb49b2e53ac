// Package checkpoint persists the resume cursor of each archived channel.
//
// A checkpoint is a plain-text file holding the id of the most recently
// archived message. It is the lower bound for the next fetch, so re-runs
// only request new content. Files are written atomically (temp file plus
// rename) to prevent a half-written id from corrupting the cursor, and a
// missing or unreadable checkpoint simply means "fetch from the beginning".
package checkpoint
