package mqtt

// TopicPrefix is the root of every topic this service publishes to.
const TopicPrefix = "pairing"

// Topics provides builders for the service's MQTT topics.
//
//	topic := mqtt.Topics{}.CodeIssued()
//	// Returns: "pairing/events/code_issued"
type Topics struct{}

// CodeIssued is where one event per successful issuance is published.
// Not retained.
func (Topics) CodeIssued() string {
	return TopicPrefix + "/events/code_issued"
}

// CodeConsumed is where one event per redeemed code is published.
// Not retained.
func (Topics) CodeConsumed() string {
	return TopicPrefix + "/events/code_consumed"
}

// SystemStatus carries the retained online/offline status and the LWT.
func (Topics) SystemStatus() string {
	return TopicPrefix + "/system/status"
}

// AllEvents matches every event topic.
func (Topics) AllEvents() string {
	return TopicPrefix + "/events/+"
}
