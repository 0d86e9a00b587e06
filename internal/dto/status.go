package dto

type StatusDTO struct {
	App       AppStatusDTO       `json:"app"`
	Storage   StorageStatusDTO   `json:"storage"`
	AI        AIStatusDTO        `json:"ai"`
	Pipeline  PipelineStatusDTO  `json:"pipeline"`
	Memory    MemoryStatusDTO    `json:"memory"`
	Scheduler SchedulerStatusDTO `json:"scheduler"`
	Events    EventsStatusDTO    `json:"events"`
}

type AppStatusDTO struct {
	Name       string `json:"name"`
	Version    string `json:"version"`
	Commit     string `json:"commit,omitempty"`
	StartedAt  string `json:"started_at"`
	UptimeSec  int64  `json:"uptime_sec"`
	SafeMode   bool   `json:"safe_mode"`
	ConfigPath string `json:"config_path,omitempty"`
}

type StorageStatusDTO struct {
	DBPath         string `json:"db_path"`
	MemoryPath     string `json:"memory_path"`
	SchemaVersion  int    `json:"schema_version"`
	SafeModeReason string `json:"safe_mode_reason,omitempty"`
}

type AIStatusDTO struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
}

type PipelineStatusDTO struct {
	SplitConfidence float64 `json:"split_confidence"`
	DepthBonusChars int     `json:"depth_bonus_chars"`
	FragmentWorkers int     `json:"fragment_workers"`
}

type MemoryStatusDTO struct {
	Documents int `json:"documents"`
}

type SchedulerStatusDTO struct {
	Enabled   bool   `json:"enabled"`
	QuoteCron string `json:"quote_cron"`
	NextRun   string `json:"next_run,omitempty"`
}

type EventsStatusDTO struct {
	Subscribers int `json:"subscribers"`
}
