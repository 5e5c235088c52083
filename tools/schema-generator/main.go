package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/agentview/config"
	"github.com/invopop/jsonschema"
)

func main() {
	out := flag.String("o", "agview.schema.json", "output path for the generated schema")
	flag.Parse()

	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&config.Config{})
	schema.Title = "Agent View (agview) Configuration"
	schema.Description = "Transcript rendering and pager settings for the 'agview' extension in grove.yml."

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling agview schema: %v", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Error creating %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Generated agview schema at %s", *out)
}
