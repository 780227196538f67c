// Package bushfire declares the fixed bushfire-planning graph: its stages,
// prompts, reply schemas and routes.
package bushfire
