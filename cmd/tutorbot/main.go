package main

import (
	"log"

	corecmd "github.com/neuroteach/tutorbot/core/cmd"
	"github.com/neuroteach/tutorbot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		Bootstrap:         app.Bootstrap,
	})
	if err != nil {
		log.Fatalf("tutorbot: %v", err)
	}
}
