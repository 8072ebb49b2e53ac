// Package archiver contains the incremental fetch pipeline: the pagination
// engine that walks a channel's message feed from its checkpoint, and the
// orchestrator that runs the engine over every configured channel and topic
// with request pacing and per-channel failure isolation.
//
// The one ordering rule everything here protects: a checkpoint is committed
// only after the messages it covers are durably appended to the channel's
// log. A crash between append and commit costs at most a re-fetch of one
// page on the next run, never a lost message.
package archiver
