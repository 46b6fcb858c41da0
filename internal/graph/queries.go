package graph

// Cypher for the three edge kinds the relationship manager maintains. Nodes
// are keyed by the content store's record id (ref_id); edge creation MERGEs
// both endpoints so ordering against record creation never matters.

const (
	ItineraryVisitsExistsQuery = `
		MATCH (i:Itinerary {ref_id: $source})-[r:VISITS]->(d:Destination {ref_id: $target})
		RETURN count(r) AS count
	`

	ItineraryVisitsCreateQuery = `
		MERGE (i:Itinerary {ref_id: $source})
		MERGE (d:Destination {ref_id: $target})
		MERGE (i)-[r:VISITS]->(d)
		ON CREATE SET r.uuid = $uuid, r.created_at = $created_at
		RETURN r.uuid AS uuid
	`

	ItineraryStaysAtExistsQuery = `
		MATCH (i:Itinerary {ref_id: $source})-[r:STAYS_AT]->(p:Property {ref_id: $target})
		RETURN count(r) AS count
	`

	ItineraryStaysAtCreateQuery = `
		MERGE (i:Itinerary {ref_id: $source})
		MERGE (p:Property {ref_id: $target})
		MERGE (i)-[r:STAYS_AT]->(p)
		ON CREATE SET r.uuid = $uuid, r.created_at = $created_at
		RETURN r.uuid AS uuid
	`

	PropertyLocatedInExistsQuery = `
		MATCH (p:Property {ref_id: $source})-[r:LOCATED_IN]->(d:Destination {ref_id: $target})
		RETURN count(r) AS count
	`

	PropertyLocatedInCreateQuery = `
		MERGE (p:Property {ref_id: $source})
		MERGE (d:Destination {ref_id: $target})
		MERGE (p)-[r:LOCATED_IN]->(d)
		ON CREATE SET r.uuid = $uuid, r.created_at = $created_at
		RETURN r.uuid AS uuid
	`
)
