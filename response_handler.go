package bolt

import (
	"sync"

	"github.com/graphwire/bolt/errors"
	"github.com/graphwire/bolt/log"
	"github.com/graphwire/bolt/messages"
)

// ResponseHandler dispatches server responses to the collectors waiting for
// them, in request order. It implements MessageHandler; the request-message
// methods fail because a server must never send them to a client.
//
// Collectors may be enqueued from a different goroutine than the one
// receiving, so the queue is guarded.
type ResponseHandler struct {
	mu         sync.Mutex
	collectors []Collector
	failure    *errors.ServerFailure
}

// NewResponseHandler creates an empty ResponseHandler
func NewResponseHandler() *ResponseHandler {
	return &ResponseHandler{}
}

// EnqueueCollector registers a collector for the next unanswered request
func (h *ResponseHandler) EnqueueCollector(c Collector) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.collectors = append(h.collectors, c)
}

// CollectorsWaiting returns the number of requests still awaiting a
// terminating response
func (h *ResponseHandler) CollectorsWaiting() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.collectors)
}

// ServerFailureOccurred reports whether an unacknowledged FAILURE response
// has been received
func (h *ResponseHandler) ServerFailureOccurred() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failure != nil
}

// ServerFailure returns the recorded failure, or nil
func (h *ResponseHandler) ServerFailure() *errors.ServerFailure {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failure
}

// ProtocolViolationErrorOccurred reports whether the recorded failure
// indicates the client broke the protocol
func (h *ResponseHandler) ProtocolViolationErrorOccurred() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.failure != nil && h.failure.IsProtocolViolation()
}

// ClearError discards the recorded failure
func (h *ResponseHandler) ClearError() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failure = nil
}

// HandleSuccess completes the oldest waiting collector
func (h *ResponseHandler) HandleSuccess(metadata map[string]interface{}) error {
	log.Tracef("S: SUCCESS %v", metadata)
	c, err := h.dequeue(messages.SuccessMessageSignature)
	if err != nil {
		return err
	}
	c.OnSuccess(metadata)
	c.OnComplete()
	return nil
}

// HandleRecord forwards a record to the oldest waiting collector without
// completing it
func (h *ResponseHandler) HandleRecord(fields []interface{}) error {
	log.Tracef("S: RECORD %v", fields)
	h.mu.Lock()
	if len(h.collectors) == 0 {
		h.mu.Unlock()
		return &errors.UnexpectedMessage{Signature: messages.RecordMessageSignature}
	}
	c := h.collectors[0]
	h.mu.Unlock()
	c.OnRecord(fields)
	return nil
}

// HandleFailure records the failure and completes the oldest waiting
// collector
func (h *ResponseHandler) HandleFailure(code string, message string) error {
	log.Tracef("S: FAILURE %s %q", code, message)
	c, err := h.dequeue(messages.FailureMessageSignature)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.failure = &errors.ServerFailure{Code: code, Message: message}
	h.mu.Unlock()
	c.OnFailure(code, message)
	c.OnComplete()
	return nil
}

// HandleIgnored completes the oldest waiting collector
func (h *ResponseHandler) HandleIgnored() error {
	log.Trace("S: IGNORED")
	c, err := h.dequeue(messages.IgnoredMessageSignature)
	if err != nil {
		return err
	}
	c.OnIgnored()
	c.OnComplete()
	return nil
}

// HandleInit fails; INIT is a request message
func (h *ResponseHandler) HandleInit(clientName string, authToken map[string]interface{}) error {
	return &errors.UnexpectedMessage{Signature: messages.InitMessageSignature}
}

// HandleRun fails; RUN is a request message
func (h *ResponseHandler) HandleRun(statement string, parameters map[string]interface{}) error {
	return &errors.UnexpectedMessage{Signature: messages.RunMessageSignature}
}

// HandleDiscardAll fails; DISCARD_ALL is a request message
func (h *ResponseHandler) HandleDiscardAll() error {
	return &errors.UnexpectedMessage{Signature: messages.DiscardAllMessageSignature}
}

// HandlePullAll fails; PULL_ALL is a request message
func (h *ResponseHandler) HandlePullAll() error {
	return &errors.UnexpectedMessage{Signature: messages.PullAllMessageSignature}
}

// HandleAckFailure fails; ACK_FAILURE is a request message
func (h *ResponseHandler) HandleAckFailure() error {
	return &errors.UnexpectedMessage{Signature: messages.AckFailureMessageSignature}
}

// HandleReset fails; RESET is a request message
func (h *ResponseHandler) HandleReset() error {
	return &errors.UnexpectedMessage{Signature: messages.ResetMessageSignature}
}

func (h *ResponseHandler) dequeue(signature byte) (Collector, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.collectors) == 0 {
		return nil, &errors.UnexpectedMessage{Signature: signature}
	}
	c := h.collectors[0]
	h.collectors = h.collectors[1:]
	return c, nil
}
