// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters): the scoring engine, the ingestion
// orchestrator and the daily retry controller.
package services
