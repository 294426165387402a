package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/ets2ha/internal/commissioning/pipeline"
	"github.com/nerrad567/ets2ha/internal/infrastructure/config"
	"github.com/nerrad567/ets2ha/internal/infrastructure/logging"
	"github.com/nerrad567/ets2ha/internal/infrastructure/mqtt"
)

// publisher is the part of mqtt.Client used to publish a run.
type publisher interface {
	PublishRetained(topic string, payload []byte, qos byte) error
	Close() error
}

// connectBroker dials the broker. Replaced in tests.
var connectBroker = func(ctx context.Context, cfg config.MQTTConfig, topics mqtt.Topics, log *logging.Logger) (publisher, error) {
	client, err := mqtt.Connect(ctx, cfg, topics)
	if err != nil {
		return nil, err
	}
	client.SetLogger(log)
	return client, nil
}

// runSummary is published next to the artifact.
type runSummary struct {
	RunID             string    `json:"run_id"`
	Format            string    `json:"format"`
	Project           string    `json:"project"`
	AddressStyle      string    `json:"address_style"`
	BLAKE3            string    `json:"blake3"`
	GroupAddresses    int       `json:"group_addresses"`
	Objects           int       `json:"objects"`
	Emitted           int       `json:"emitted"`
	Orphans           int       `json:"orphans"`
	SkippedObjects    int       `json:"skipped_objects"`
	SkippedReferences int       `json:"skipped_references"`
	Conflicts         int       `json:"conflicts"`
	Timestamp         time.Time `json:"timestamp"`
}

func newRunSummary(runID, format string, res *pipeline.Result, sum string) runSummary {
	stats := res.Statistics
	return runSummary{
		RunID:             runID,
		Format:            format,
		Project:           res.Model.ProjectName,
		AddressStyle:      res.Model.Style.String(),
		BLAKE3:            sum,
		GroupAddresses:    stats.Model.GroupAddresses,
		Objects:           stats.Model.Objects,
		Emitted:           stats.Generate.Emitted,
		Orphans:           stats.Generate.Orphans,
		SkippedObjects:    stats.Generate.SkippedObjects,
		SkippedReferences: stats.Generate.SkippedReferences,
		Conflicts:         stats.Generate.Conflicts,
		Timestamp:         time.Now().UTC(),
	}
}

// publishArtifact sends the artifact as a retained message on
// <topic>/config/<format> and the run summary on <topic>/run/<run_id>.
func publishArtifact(ctx context.Context, cfg *config.Config, summary runSummary, data []byte, log *logging.Logger) error {
	topics := mqtt.Topics{Root: cfg.Publish.Topic}
	qos := byte(cfg.Publish.QoS) //nolint:gosec // validated 0-2

	client, err := connectBroker(ctx, cfg.MQTT, topics, log)
	if err != nil {
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing MQTT connection", "error", closeErr)
		}
	}()

	artifactTopic := topics.Artifact(summary.Format)
	if err := client.PublishRetained(artifactTopic, data, qos); err != nil {
		return fmt.Errorf("publishing artifact: %w", err)
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encoding run summary: %w", err)
	}
	if err := client.PublishRetained(topics.Run(summary.RunID), payload, qos); err != nil {
		return fmt.Errorf("publishing run summary: %w", err)
	}

	log.Info("artifact published", "topic", artifactTopic, "bytes", len(data))
	return nil
}
