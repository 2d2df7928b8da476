package main

import (
	"encoding/json"
	"log"
	"os"

	"recdiv/pipeline"
)

func main() {
	metadata := pipeline.DefaultExperimentMetadata()

	args := os.Args
	basePath := args[1]
	metadataPath := args[2]
	metadataJson, err := os.ReadFile(metadataPath)
	if err != nil {
		log.Fatalf("Failed to load metadata file: %v", err)
	}

	err = json.Unmarshal(metadataJson, metadata)
	if err != nil {
		log.Fatalf("Failed to unmarshal metadata file: %v", err)
	}

	experiment := pipeline.NewExperiment(basePath, metadata)

	if experiment.IsFinished() {
		log.Printf("Experiment %s already finished, skipping", metadata.UniqueName)
		return
	}

	if err := experiment.Init(); err != nil {
		log.Fatalf("Failed to initialize experiment: %v", err)
	}
	defer experiment.Close()

	if err := experiment.Run(); err != nil {
		log.Fatalf("Experiment failed: %v", err)
	}
}
