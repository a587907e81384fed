package events

import (
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

const (
	StageStartedEvent   = "stage.started"
	StageCompletedEvent = "stage.completed"
	StageFailedEvent    = "stage.failed"

	DataGeneratedEvent      = "data.generated"
	ForecastCompletedEvent  = "forecast.completed"
	RawMaterialDerivedEvent = "rawmaterial.derived"
	ShipmentOptimizedEvent  = "shipment.optimized"
	ProductInfeasibleEvent  = "shipment.infeasible"
	EmailsIndexedEvent      = "emails.indexed"
)

type StageStarted struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
}

type StageCompleted struct {
	RunID    string        `json:"run_id"`
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
	Detail   string        `json:"detail"`
}

type StageFailed struct {
	RunID string `json:"run_id"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

type DataGenerated struct {
	Products    int `json:"products"`
	Wholesalers int `json:"wholesalers"`
	DemandRows  int `json:"demand_rows"`
	BOMLines    int `json:"bom_lines"`
}

type ForecastCompleted struct {
	Series   int `json:"series"`
	Points   int `json:"points"`
	DCDemand int `json:"dc_demand"`
}

type RawMaterialDerived struct {
	RawMaterials int               `json:"raw_materials"`
	TotalDemand  entities.Quantity `json:"total_demand"`
}

type ShipmentOptimized struct {
	Products   int `json:"products"`
	Optimal    int `json:"optimal"`
	Infeasible int `json:"infeasible"`
	Skipped    int `json:"skipped"`
}

type ProductInfeasible struct {
	Product entities.MaterialID `json:"product"`
	Status  string              `json:"status"`
}

type EmailsIndexed struct {
	Emails  int    `json:"emails"`
	Indexed int    `json:"indexed"`
	Model   string `json:"model"`
}
