package controllers

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
)

const (
	heldLeadsPath     = "/held-leads"
	auditPath         = "/audit"
	poolQueryParamKey = "pool"
	queueQueryParamID = "queueId"
)

// PoolLeadModel is a held or archived lead as exposed over http
type PoolLeadModel struct {
	Lead            *data.Lead    `json:"lead"`
	Pool            data.PoolKind `json:"pool"`
	Reason          string        `json:"reason"`
	MatchedQueueID  string        `json:"matchedQueueId,omitempty"`
	PreviousQueueID string        `json:"previousQueueId,omitempty"`
	Owner           string        `json:"owner,omitempty"`
	Status          string        `json:"status"`
	Tags            data.Tags     `json:"tags,omitempty"`
	BatchID         string        `json:"batchId,omitempty"`
	PooledAt        time.Time     `json:"pooledAt"`
}

func newPoolLeadModel(poolLead *data.PoolLead) *PoolLeadModel {
	return &PoolLeadModel{Lead: poolLead.Lead, Pool: poolLead.Pool, Reason: poolLead.Reason, MatchedQueueID: poolLead.MatchedQueueID,
		PreviousQueueID: poolLead.PreviousQueueID, Owner: poolLead.Owner, Status: poolLead.Status, Tags: poolLead.Tags, BatchID: poolLead.BatchID,
		PooledAt: poolLead.CreatedAt}
}

// HeldLeadsController is for /held-leads; `?pool=archived` lists the archive instead
type HeldLeadsController struct {
	PoolLeadRepo storage.PoolLeadRepository
}

// NewHeldLeadsController creates the held pool listing controller
func NewHeldLeadsController(poolLeadRepo storage.PoolLeadRepository) *HeldLeadsController {
	return &HeldLeadsController{PoolLeadRepo: poolLeadRepo}
}

// Get implements the /held-leads GET endpoint
func (controller *HeldLeadsController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	pool := data.PoolHeld
	if requested := data.PoolKind(r.URL.Query().Get(poolQueryParamKey)); len(requested) > 0 {
		if requested != data.PoolHeld && requested != data.PoolArchived {
			writeBadRequest(w)
			return
		}
		pool = requested
	}
	poolLeads, resultPagination, err := controller.PoolLeadRepo.GetList(pool, getPagination(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	models := make([]*PoolLeadModel, 0, len(poolLeads))
	for _, poolLead := range poolLeads {
		models = append(models, newPoolLeadModel(poolLead))
	}
	writeJSON(w, ListResult{Result: models, Pages: getPaginationLinks(r, resultPagination)})
}

// GetPath returns the endpoint's path
func (controller *HeldLeadsController) GetPath() string {
	return heldLeadsPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *HeldLeadsController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return heldLeadsPath
}

// AuditEntryModel is an audit log entry as exposed over http
type AuditEntryModel struct {
	ID        string            `json:"id"`
	Type      data.AuditType    `json:"type"`
	Actor     string            `json:"actor"`
	Timestamp time.Time         `json:"timestamp"`
	QueueID   string            `json:"queueId,omitempty"`
	LeadID    string            `json:"leadId,omitempty"`
	MemberID  string            `json:"memberId,omitempty"`
	Details   data.AuditDetails `json:"details,omitempty"`
}

func newAuditEntryModel(entry *data.AuditEntry) *AuditEntryModel {
	return &AuditEntryModel{ID: entry.ID.String(), Type: entry.Type, Actor: entry.Actor, Timestamp: entry.Timestamp, QueueID: entry.QueueID,
		LeadID: entry.LeadID, MemberID: entry.MemberID, Details: entry.Details}
}

// AuditController is for /audit; `?queueId=` narrows the log to one queue
type AuditController struct {
	AuditRepo storage.AuditRepository
}

// NewAuditController creates the audit log controller
func NewAuditController(auditRepo storage.AuditRepository) *AuditController {
	return &AuditController{AuditRepo: auditRepo}
}

// Get implements the /audit GET endpoint
func (controller *AuditController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	entries, resultPagination, err := controller.AuditRepo.GetList(r.URL.Query().Get(queueQueryParamID), getPagination(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	models := make([]*AuditEntryModel, 0, len(entries))
	for _, entry := range entries {
		models = append(models, newAuditEntryModel(entry))
	}
	writeJSON(w, ListResult{Result: models, Pages: getPaginationLinks(r, resultPagination)})
}

// GetPath returns the endpoint's path
func (controller *AuditController) GetPath() string {
	return auditPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *AuditController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return auditPath
}
