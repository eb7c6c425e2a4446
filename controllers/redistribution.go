package controllers

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/redistribution"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
)

const (
	redistributionPath = "/redistribution"
	previewPath        = redistributionPath + "/preview"
	executePath        = redistributionPath + "/execute"
	importPath         = redistributionPath + "/import"
	jobIDPathParamKey  = "jobId"
	redistributionJob  = redistributionPath + "/job/:" + jobIDPathParamKey
	headerLocation     = "Location"
)

// RedistributionRequest is the body of preview and execute
type RedistributionRequest struct {
	Selection   *redistribution.Selection `json:"selection"`
	Destination data.Destination          `json:"destination"`
	RequestedBy string                    `json:"requestedBy,omitempty"`
}

// JobModel is a redistribution job as exposed over http
type JobModel struct {
	ID              string           `json:"id"`
	Status          data.JobStatus   `json:"status"`
	StatusChangedAt time.Time        `json:"statusChangedAt"`
	TotalLeads      int              `json:"totalLeads"`
	Destination     data.Destination `json:"destination"`
	RequestedBy     string           `json:"requestedBy"`
	FiltersUsed     data.StringMap   `json:"filtersUsed,omitempty"`
	LeadIDs         []string         `json:"leadIds"`
	AssignedCount   int              `json:"assignedCount"`
	ReheldCount     int              `json:"reheldCount"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// ExecutionModel is the answer to an execute request
type ExecutionModel struct {
	AffectedLeads int       `json:"affectedLeads"`
	Job           *JobModel `json:"job,omitempty"`
	AuditEntryID  string    `json:"auditEntryId,omitempty"`
	JobLink       string    `json:"jobLink,omitempty"`
}

func newJobModel(job *data.RedistributionJob) *JobModel {
	leadIDs := make([]string, 0, len(job.Leads))
	for _, poolLead := range job.Leads {
		leadIDs = append(leadIDs, poolLead.Lead.ID)
	}
	return &JobModel{ID: job.ID.String(), Status: job.Status, StatusChangedAt: job.StatusChangedAt, TotalLeads: job.TotalLeads,
		Destination: job.Destination, RequestedBy: job.RequestedBy, FiltersUsed: job.FiltersUsed, LeadIDs: leadIDs,
		AssignedCount: job.AssignedCount, ReheldCount: job.ReheldCount, CreatedAt: job.CreatedAt}
}

func writeRedistributionErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, redistribution.ErrEmptySelection), errors.Is(err, data.ErrInvalidDestination), errors.Is(err, redistribution.ErrInvalidImport):
		writeStatus(w, http.StatusBadRequest, err)
	case errors.Is(err, storage.ErrDuplicatePoolLead):
		writeStatus(w, http.StatusConflict, err)
	default:
		writeErr(w, err)
	}
}

// PreviewController is for POST /redistribution/preview
type PreviewController struct {
	Worker redistribution.Worker
}

// NewPreviewController creates the preview controller
func NewPreviewController(worker redistribution.Worker) *PreviewController {
	return &PreviewController{Worker: worker}
}

// Post estimates the redistribution without changing anything
func (controller *PreviewController) Post(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	request := &RedistributionRequest{}
	if !readJSON(w, r, request) {
		return
	}
	preview, err := controller.Worker.Preview(request.Selection, request.Destination)
	if err != nil {
		writeRedistributionErr(w, err)
		return
	}
	writeJSON(w, preview)
}

// GetPath returns the endpoint's path
func (controller *PreviewController) GetPath() string {
	return previewPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *PreviewController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return previewPath
}

// ExecuteController is for POST /redistribution/execute
type ExecuteController struct {
	Worker       redistribution.Worker
	RouterConfig config.RouterConfig
	JobEndpoint  EndpointController
}

// NewExecuteController creates the execute controller
func NewExecuteController(worker redistribution.Worker, routerConfig config.RouterConfig, jobController *RedistributionJobController) *ExecuteController {
	return &ExecuteController{Worker: worker, RouterConfig: routerConfig, JobEndpoint: jobController}
}

// Post queues a redistribution job; 202 with the job when leads were selected, 200 with no job otherwise
func (controller *ExecuteController) Post(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	request := &RedistributionRequest{}
	if !readJSON(w, r, request) {
		return
	}
	requestedBy := request.RequestedBy
	if len(requestedBy) <= 0 {
		requestedBy = getActor(r, controller.RouterConfig.GetActorHeaderName())
	}
	execution, err := controller.Worker.Execute(request.Selection, request.Destination, requestedBy, nil)
	if err != nil {
		writeRedistributionErr(w, err)
		return
	}
	model := &ExecutionModel{AffectedLeads: execution.AffectedLeads}
	if execution.Job == nil {
		writeJSON(w, model)
		return
	}
	model.Job = newJobModel(execution.Job)
	model.JobLink = controller.JobEndpoint.FormatAsRelativeLink(httprouter.Param{Key: jobIDPathParamKey, Value: model.Job.ID})
	if execution.AuditEntry != nil {
		model.AuditEntryID = execution.AuditEntry.ID.String()
	}
	w.Header().Set(headerLocation, model.JobLink)
	writeJSONWithStatus(w, http.StatusAccepted, model)
}

// GetPath returns the endpoint's path
func (controller *ExecuteController) GetPath() string {
	return executePath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *ExecuteController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return executePath
}

// ImportController is for POST /redistribution/import
type ImportController struct {
	Worker       redistribution.Worker
	RouterConfig config.RouterConfig
}

// NewImportController creates the import controller
func NewImportController(worker redistribution.Worker, routerConfig config.RouterConfig) *ImportController {
	return &ImportController{Worker: worker, RouterConfig: routerConfig}
}

// Post imports a batch of leads into the archive
func (controller *ImportController) Post(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	payload := &redistribution.ImportPayload{}
	if !readJSON(w, r, payload) {
		return
	}
	if len(payload.RequestedBy) <= 0 {
		payload.RequestedBy = getActor(r, controller.RouterConfig.GetActorHeaderName())
	}
	result, err := controller.Worker.ImportBatch(payload)
	if err != nil {
		writeRedistributionErr(w, err)
		return
	}
	writeJSONWithStatus(w, http.StatusCreated, result)
}

// GetPath returns the endpoint's path
func (controller *ImportController) GetPath() string {
	return importPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *ImportController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return importPath
}

// RedistributionJobController is for GET /redistribution/job/:jobId
type RedistributionJobController struct {
	Worker redistribution.Worker
}

// NewRedistributionJobController creates the job status controller
func NewRedistributionJobController(worker redistribution.Worker) *RedistributionJobController {
	return &RedistributionJobController{Worker: worker}
}

// Get returns the job with its progress counts
func (controller *RedistributionJobController) Get(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	job, err := controller.Worker.GetJob(findParam(params, jobIDPathParamKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeNotFound(w)
		} else {
			writeErr(w, err)
		}
		return
	}
	writeJSON(w, newJobModel(job))
}

// GetPath returns the endpoint's path
func (controller *RedistributionJobController) GetPath() string {
	return redistributionJob
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *RedistributionJobController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return formatURL(params, redistributionJob, jobIDPathParamKey)
}
