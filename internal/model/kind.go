package model

// MessageType classifies the payload of a counted message.
type MessageType string

const (
	TypeText     MessageType = "text"
	TypePhoto    MessageType = "photo"
	TypeVideo    MessageType = "video"
	TypeDocument MessageType = "document"
	TypeAudio    MessageType = "audio"
	TypeVoice    MessageType = "voice"
	TypeOther    MessageType = "other"
)
