// Package metrics holds the exporter's metric sink: a private client_golang
// registry with one gauge family per exported field and the failed-request
// counter. Collectors write through the Set* methods; the scrape handler
// renders the registry with Write.
package metrics
