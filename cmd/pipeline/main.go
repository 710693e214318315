package main

import (
	"bike-data-pipeline/internal/model"
	"bike-data-pipeline/internal/pipeline"
	"bike-data-pipeline/internal/store"
	"bike-data-pipeline/pkg/utils"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; flag defaults cover everything it can set
	_ = godotenv.Load()

	input := flag.String("input", utils.GetEnv("PIPELINE_INPUT", ""), "trip log CSV path or http(s) URL")
	output := flag.String("output", utils.GetEnv("PIPELINE_OUTPUT", "clean_trips.csv"), "cleaned CSV destination")
	dbPath := flag.String("db", utils.GetEnv("PIPELINE_DB", "pipeline.db"), "sqlite database path")
	specPath := flag.String("spec", "", "JSON job spec file; overrides the other job flags")
	analyze := flag.Bool("analyze", false, "print a data quality report before cleaning")
	geocodeCache := flag.String("geocode-cache", "", "station coordinate cache CSV; empty disables geocoding")
	partitionDir := flag.String("partition-dir", "", "directory for temporal partitions; empty disables partitioning")
	mergeOutput := flag.String("merge-output", "", "cleaned CSV with station coordinates; empty disables the merge")
	timeout := flag.String("timeout", utils.GetEnv("PIPELINE_TIMEOUT", "5m"), "job timeout, e.g. 5m")
	flag.Parse()

	var job model.CleaningJobSpec
	if *specPath != "" {
		data, err := os.ReadFile(*specPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to read job spec: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &job); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to parse job spec: %v\n", err)
			os.Exit(1)
		}
	} else {
		if *input == "" {
			fmt.Fprintln(os.Stderr, "❌ An input file is required, use -input or -spec")
			flag.Usage()
			os.Exit(1)
		}
		job = model.CleaningJobSpec{
			Source:     model.Source{URL: *input},
			Export:     &model.ExportSpec{File: *output},
			Analyze:    *analyze,
			JobTimeout: *timeout,
		}
		if *geocodeCache != "" {
			job.Geocode = &model.GeocodeSpec{CacheFile: *geocodeCache}
		}
		if *partitionDir != "" {
			job.Partition = &model.PartitionSpec{OutputDir: *partitionDir}
		}
		if *mergeOutput != "" {
			job.Merge = &model.MergeSpec{File: *mergeOutput}
		}
	}

	// Init DB
	if err := store.InitDB(*dbPath); err != nil {
		panic(err)
	}

	jobID := uuid.New().String()
	if err := store.SaveJob(jobID, job); err != nil {
		panic(err)
	}

	// Run prints and persists its own failure details
	if err := pipeline.Run(context.Background(), jobID, job); err != nil {
		os.Exit(1)
	}
}
