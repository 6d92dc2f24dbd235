package bolt

// Collector receives the server's responses to a single request. Exactly one
// of OnSuccess, OnFailure or OnIgnored terminates the response, preceded by
// zero or more OnRecord calls; OnComplete fires after any of the three.
type Collector interface {
	OnSuccess(metadata map[string]interface{})
	OnRecord(fields []interface{})
	OnFailure(code string, message string)
	OnIgnored()
	OnComplete()
}

// NoOpCollector discards every response. Embed it to implement only the
// callbacks a collector cares about.
type NoOpCollector struct{}

func (NoOpCollector) OnSuccess(metadata map[string]interface{}) {}
func (NoOpCollector) OnRecord(fields []interface{})             {}
func (NoOpCollector) OnFailure(code string, message string)     {}
func (NoOpCollector) OnIgnored()                                {}
func (NoOpCollector) OnComplete()                               {}

// InitCollector captures the server identification string from the INIT
// response metadata
type InitCollector struct {
	NoOpCollector
	server string
}

// OnSuccess captures the "server" metadata entry
func (c *InitCollector) OnSuccess(metadata map[string]interface{}) {
	if server, ok := metadata["server"].(string); ok {
		c.server = server
	}
}

// Server returns the server identification captured from the INIT response,
// or empty if the server did not provide one
func (c *InitCollector) Server() string {
	return c.server
}

// ResetCollector runs a callback when a RESET completes successfully
type ResetCollector struct {
	NoOpCollector
	doneSuccess func()
}

// OnSuccess runs the success callback
func (c *ResetCollector) OnSuccess(metadata map[string]interface{}) {
	if c.doneSuccess != nil {
		c.doneSuccess()
	}
}

// RecordCollector accumulates records and the final metadata of a streaming
// response
type RecordCollector struct {
	NoOpCollector
	Records  [][]interface{}
	Metadata map[string]interface{}
}

// OnSuccess captures the summary metadata
func (c *RecordCollector) OnSuccess(metadata map[string]interface{}) {
	c.Metadata = metadata
}

// OnRecord appends the record's field values
func (c *RecordCollector) OnRecord(fields []interface{}) {
	c.Records = append(c.Records, fields)
}
