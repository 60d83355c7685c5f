// Package config provides configuration loading for Tessera projects.
//
// The configuration lives in tessera.json or tessera.yaml at the project
// root. It is read once at boot; the engine turns it into an immutable
// options value shared by every render.
//
// # Configuration File Structure
//
//	render:
//	  maxDepth: 50
//	  emitActionAttrs: true
//	security:
//	  allowedImageDomains: ["cdn.example.com"]
//	  allowDataImages: false
//	logging:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  namespace: tessera
//	tracing:
//	  enabled: false
//	server:
//	  addr: ":3000"
//	export:
//	  dir: dist
//	  bucket: ""
//	  prefix: ""
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Max depth:", cfg.Render.MaxDepth)
package config
