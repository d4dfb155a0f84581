package store

// MaxDecodedBytes bounds the memory one decoded session may use
const MaxDecodedBytes = 64 << 20

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

const (
	LogMsgStoreOpened = "Session store opened"
)
