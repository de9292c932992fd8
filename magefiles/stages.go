//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// topicFromEnv reads the TOPIC variable the stage targets operate on.
func topicFromEnv() (string, error) {
	topic := strings.TrimSpace(os.Getenv("TOPIC"))
	if topic == "" {
		return "", fmt.Errorf("set TOPIC, e.g. TOPIC=\"urban beekeeping\" mage run")
	}
	return topic, nil
}

// Search queries the provider chain for $TOPIC.
func Search() error {
	mg.Deps(Build)
	topic, err := topicFromEnv()
	if err != nil {
		return err
	}
	return sh.RunV(binPath, "search", "--query", topic)
}

// Research collects facts and sources for $TOPIC.
func Research() error {
	mg.Deps(Build)
	topic, err := topicFromEnv()
	if err != nil {
		return err
	}
	return sh.RunV(binPath, "research", "--topic", topic)
}

// Run executes the full pipeline for $TOPIC in $TONE (default professional)
// and saves the result under output/runs/.
func Run() error {
	mg.Deps(Build, Init)
	topic, err := topicFromEnv()
	if err != nil {
		return err
	}
	args := []string{"run", "--topic", topic}
	if tone := os.Getenv("TONE"); tone != "" {
		args = append(args, "--tone", tone)
	}
	out := filepath.Join("output", "runs", time.Now().Format("20060102-150405")+".yaml")
	args = append(args, "--output", out)
	return sh.RunV(binPath, args...)
}

// Serve starts the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binPath, "serve")
}
