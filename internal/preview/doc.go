// Package preview decides how a StudyShare resource file is presented.
//
// It has three layers:
//
//  1. Classify maps a file name to a Category through a fixed extension
//     table. It is pure and total: every string maps to exactly one
//     category, unrecognized or missing extensions map to Unknown.
//  2. Resolver turns a stored file path into a ResolvedFileRef, preferring
//     the backend serve endpoint whenever a resource id is known, because
//     that endpoint negotiates the correct content type.
//  3. StrategyFor maps every Category to exactly one rendering Strategy and
//     Renderer carries the strategy out against a terminal writer, falling
//     back to a download prompt when a viewer fails to load.
//
// The extension table is only a hint for choosing a strategy; the serve
// endpoint remains the authority on the actual content.
package preview
