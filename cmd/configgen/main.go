package main

import (
	"fmt"
	"log"
	"os"

	"github.com/danmuck/teleinfo/internal/config"
	"github.com/spf13/pflag"
)

func main() {
	output := pflag.StringP("output", "o", "teleinfod.toml", "output path for config template")
	validate := pflag.Bool("validate", false, "validate an existing config file")
	input := pflag.StringP("input", "i", "teleinfod.toml", "config path for validation")
	force := pflag.Bool("force", false, "overwrite existing config file")
	stdout := pflag.Bool("stdout", false, "print the template instead of writing it")
	pflag.Parse()

	if *validate {
		if _, err := config.Load(*input); err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s", *input)
		return
	}

	if *stdout {
		fmt.Fprint(os.Stdout, config.Template())
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote config template to %s", *output)
}
