// Package models defines domain entities and sum types for the musebox sync engine.
//
// The package contains three categories of types:
//
// 1. Provider tree nodes: Lightweight structs describing remote content
//   - [Folder] : A folder in a file-based provider's tree
//   - [File] : A file with size, MIME hint, and download URL
//   - [TrackMetadata] : Raw metadata extracted from an audio sample
//
// 2. Persistent entities: Normalized library records persisted to SQLite
//   - [Artist] : Deduplicated artist with optional image
//   - [Album] : Album owning an ordered, deduplicated track list
//   - [Track] : Flattened track row referencing its main artist
//
// 3. Sum types: Closed unions matched exhaustively by the engine
//   - [StartArgs] : Per-session sync configuration ([FileStartArgs] | [APIStartArgs])
//   - [Status] : Provider lifecycle status reported over the status channel
//
// Both sum types are sealed interfaces; adding a variant requires touching
// every switch in internal/engine, which is intentional.
package models
