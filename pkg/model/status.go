package model

// NodeStatus is the point-in-time view of this node reported by the status
// endpoint.
type NodeStatus struct {
	NodeID          string  `json:"node_id"`
	DID             string  `json:"did"`
	IsOnline        bool    `json:"is_online"`
	UptimeSeconds   int64   `json:"uptime_seconds"`
	ServicesCount   int     `json:"services_count"`
	ReputationScore float64 `json:"reputation_score"`
	PeersCount      int     `json:"peers_count"`
}

// NetworkStats are the aggregate counts polled by clients. Staleness is
// bounded by the caller's polling interval.
type NetworkStats struct {
	PeersCount    int `json:"peers"`
	TotalServices int `json:"services"`
	TotalTasks    int `json:"tasks"`
}
