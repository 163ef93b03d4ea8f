package salessync

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// RawSalesLine is one usable line from the sales extract after header
// mapping and coercion. Lines missing a parsable bill date or a store code
// never make it into this type.
type RawSalesLine struct {
	RowNumber    int
	SaleDate     time.Time
	BillTime     *time.Time
	StoreCode    string
	BillNo       string
	NetAmount    decimal.Decimal
	Qty          decimal.Decimal
	SalesmanNo   string
	SalesmanName string
}

// SyncSummary is the result of one pipeline run, persisted as the run's
// stats JSON and returned to synchronous callers.
type SyncSummary struct {
	OK          bool     `json:"ok"`
	RowsWritten int      `json:"rows"`
	RowsSkipped int      `json:"rows_skipped"`
	SaleDates   []string `json:"sale_dates"`
	Stores      []string `json:"stores"`
	Error       string   `json:"error,omitempty"`
}

func EncodeSummary(s SyncSummary) []byte {
	b, _ := json.Marshal(s)
	return b
}

func DecodeSummary(raw []byte) SyncSummary {
	var s SyncSummary
	if len(raw) == 0 {
		return s
	}
	_ = json.Unmarshal(raw, &s)
	return s
}

type SyncPubSubPayload struct {
	RunId      uint   `json:"runId"`
	ObjectName string `json:"objectName"`
}

type PubSubPushEnvelope struct {
	Message struct {
		Data        []byte `json:"data"`
		MessageId   string `json:"messageId"`
		PublishTime string `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

type TriggerSyncRequest struct {
	ObjectName string `json:"objectName"`
}

type SyncHistoryResponse struct {
	Items []SyncRunResponse `json:"items"`
}

type SyncRunResponse struct {
	ID          uint    `json:"id"`
	ObjectName  string  `json:"objectName"`
	Status      string  `json:"status"`
	StartedAt   *string `json:"startedAt"`
	FinishedAt  *string `json:"finishedAt"`
	DurationMs  int64   `json:"durationMs"`
	RowsWritten int     `json:"rowsWritten"`
	RowsSkipped int     `json:"rowsSkipped"`
	ErrorCount  int     `json:"errorCount"`
	TriggeredBy string  `json:"triggeredBy"`
}

type SyncRunDetailResponse struct {
	SyncRunResponse
	Stats  SyncSummary         `json:"stats"`
	Errors []SyncErrorResponse `json:"errors"`
}

type SyncErrorResponse struct {
	ID        uint   `json:"id"`
	RowNumber int    `json:"rowNumber"`
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}
