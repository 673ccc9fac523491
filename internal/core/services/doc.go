// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is DocumentStore -> IndexCache -> HybridRetriever, with
// Library publishing each refreshed corpus as one immutable snapshot.
//
// Services are pure Go with no CGO.
package services
