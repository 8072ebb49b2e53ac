// Package archive owns the on-disk format of a channel backup.
//
// Each channel gets one directory holding an append-only UTF-8 message log,
// an images/ subdirectory for downloaded media, and a checkpoint file. The
// log has two line grammars:
//
//	[<timestamp>] <username>: <content>
//	[<timestamp>] <username> shared an image: images/<filename>
//
// This format is the durable contract between the archiver and any
// downstream reader; it stays line-oriented and append-only so consumers
// can stream it. The package provides the writer that produces it, the
// media fetcher that populates images/, and the reader the viewer uses to
// reconstruct a chat from it.
package archive
