// Package ontap polls the ONTAP REST API. For each resource kind it lists
// /api/storage/volumes, /api/storage/aggregates or /api/cluster/nodes, follows
// every entry's self link and records the detail document into a Recorder.
// Upstream failures are counted and logged; they never fail a scrape.
package ontap
