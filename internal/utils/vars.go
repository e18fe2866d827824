package utils

// DefaultChunkSize is the ranged-GET chunk size used when a downloader is
// built without an explicit one.
const DefaultChunkSize int64 = 10 * 1024 * 1024 // 10MB

const ToolUserAgent = "gmedia-cli"

// TempDirName holds partially written sink files until they are finalized.
const TempDirName = ".gmedia-temp"
