package messages

const (
	// FailureMessageSignature is the signature byte for the FAILURE message
	FailureMessageSignature = 0x7F
)

// FailureMessage Represents an FAILURE message. Metadata carries "code" and
// "message" strings.
type FailureMessage struct {
	Metadata map[string]interface{}
}

// NewFailureMessage Gets a new FailureMessage struct
func NewFailureMessage(metadata map[string]interface{}) FailureMessage {
	return FailureMessage{
		Metadata: metadata,
	}
}

// Signature gets the signature byte for the struct
func (i FailureMessage) Signature() byte {
	return FailureMessageSignature
}

// AllFields gets the fields to encode for the struct
func (i FailureMessage) AllFields() []interface{} {
	return []interface{}{i.Metadata}
}

// Code gets the failure code from the metadata
func (i FailureMessage) Code() string {
	code, _ := i.Metadata["code"].(string)
	return code
}

// Message gets the failure message from the metadata
func (i FailureMessage) Message() string {
	message, _ := i.Metadata["message"].(string)
	return message
}
