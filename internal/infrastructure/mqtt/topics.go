package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicRoot is used when Topics.Root is empty.
const DefaultTopicRoot = "ets2ha"

// Topics provides builders for the ets2ha topic hierarchy:
//
//	<root>/status            online/offline (retained, LWT)
//	<root>/config/<format>   latest generated artifact (retained)
//	<root>/run/<run_id>      summary of one conversion run
type Topics struct {
	Root string
}

func (t Topics) root() string {
	r := strings.TrimSuffix(t.Root, "/")
	if r == "" {
		return DefaultTopicRoot
	}
	return r
}

// Status returns the client status topic.
//
// Example: ets2ha/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/status", t.root())
}

// Artifact returns the topic carrying the generated configuration for a
// format.
//
// Example: ets2ha/config/homeass
func (t Topics) Artifact(format string) string {
	return fmt.Sprintf("%s/config/%s", t.root(), format)
}

// Run returns the topic for a run summary.
//
// Example: ets2ha/run/6f1c...
func (t Topics) Run(runID string) string {
	return fmt.Sprintf("%s/run/%s", t.root(), runID)
}

// AllArtifacts returns a pattern matching every artifact topic.
//
// Pattern: ets2ha/config/+
func (t Topics) AllArtifacts() string {
	return fmt.Sprintf("%s/config/+", t.root())
}
