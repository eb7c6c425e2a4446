package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/dispatcher"
	"github.com/newscred/lead-router/routing"
	"github.com/newscred/lead-router/storage/data"
)

const (
	queuesPath           = "/queues"
	queueIDPathParamKey  = "queueId"
	memberIDPathParamKey = "memberId"
	queuePath            = "/queue/:" + queueIDPathParamKey
	checkinPath          = queuePath + "/member/:" + memberIDPathParamKey + "/checkin"
	checkoutPath         = queuePath + "/member/:" + memberIDPathParamKey + "/checkout"
	rotationPath         = queuePath + "/rotation"
)

// MemberModel is the member as exposed over http
type MemberModel struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Active        bool      `json:"active"`
	AvailableNow  bool      `json:"availableNow"`
	RotationOrder int       `json:"rotationOrder"`
	LastCheckIn   time.Time `json:"lastCheckIn,omitempty"`
	OpenLeadLimit uint      `json:"openLeadLimit,omitempty"`
}

// QueueModel is the queue with its rotation state as exposed over http
type QueueModel struct {
	ID             string              `json:"id"`
	Name           string              `json:"name"`
	Priority       int                 `json:"priority"`
	Enabled        bool                `json:"enabled"`
	Rules          data.Rules          `json:"rules"`
	Members        []*MemberModel      `json:"members"`
	NextMemberID   string              `json:"nextMemberId,omitempty"`
	CheckinWindow  data.CheckinWindow  `json:"checkinWindow"`
	AdvancedConfig data.AdvancedConfig `json:"advancedConfig"`
	ReceivedCount  uint64              `json:"receivedCount"`
	ChangedAt      time.Time           `json:"changedAt"`
}

func newMemberModel(member *data.Member) *MemberModel {
	return &MemberModel{ID: member.MemberID, Name: member.Name, Active: member.Active, AvailableNow: member.AvailableNow,
		RotationOrder: member.RotationOrder, LastCheckIn: member.LastCheckIn, OpenLeadLimit: member.OpenLeadLimit}
}

func newQueueModel(queue *data.Queue) *QueueModel {
	members := make([]*MemberModel, 0, len(queue.Members))
	for _, member := range queue.Members {
		members = append(members, newMemberModel(member))
	}
	rules := queue.Rules
	if rules == nil {
		rules = data.Rules{}
	}
	return &QueueModel{ID: queue.QueueID, Name: queue.Name, Priority: queue.Priority, Enabled: queue.Enabled, Rules: rules, Members: members,
		NextMemberID: queue.NextMemberID, CheckinWindow: queue.CheckinWindow, AdvancedConfig: queue.AdvancedConfig, ReceivedCount: queue.ReceivedCount,
		ChangedAt: queue.UpdatedAt}
}

func writeRotationErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrQueueNotFound):
		writeNotFound(w)
	case errors.Is(err, routing.ErrMemberNotFound):
		writeStatus(w, http.StatusNotFound, err)
	case errors.Is(err, routing.ErrDuplicateMember):
		writeStatus(w, http.StatusBadRequest, err)
	default:
		writeErr(w, err)
	}
}

// QueueController is for /queue/:queueId
type QueueController struct {
	Router *dispatcher.LeadRouter
}

// NewQueueController creates the controller for a single queue
func NewQueueController(router *dispatcher.LeadRouter) *QueueController {
	return &QueueController{Router: router}
}

// Get implements the /queue/:queueId GET endpoint
func (controller *QueueController) Get(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	queue, err := controller.Router.Coordinator().Queue(findParam(params, queueIDPathParamKey))
	if err != nil {
		writeRotationErr(w, err)
		return
	}
	w.Header().Add(headerLastModified, queue.UpdatedAt.Format(http.TimeFormat))
	writeJSON(w, newQueueModel(queue))
}

// GetPath returns the endpoint's path
func (controller *QueueController) GetPath() string {
	return queuePath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *QueueController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return formatURL(params, queuePath, queueIDPathParamKey)
}

// QueuesController is for /queues; queues are listed in priority order with links to each
type QueuesController struct {
	Router        *dispatcher.LeadRouter
	QueueEndpoint EndpointController
}

// QueueListItem is one entry of the queue list
type QueueListItem struct {
	ID       string `json:"id"`
	Priority int    `json:"priority"`
	Enabled  bool   `json:"enabled"`
	Link     string `json:"link"`
}

// NewQueuesController creates the controller for the queue list
func NewQueuesController(router *dispatcher.LeadRouter, queueController *QueueController) *QueuesController {
	return &QueuesController{Router: router, QueueEndpoint: queueController}
}

// Get implements the /queues GET endpoint
func (controller *QueuesController) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	queues := controller.Router.Coordinator().Queues()
	items := make([]*QueueListItem, 0, len(queues))
	for _, queue := range queues {
		items = append(items, &QueueListItem{ID: queue.QueueID, Priority: queue.Priority, Enabled: queue.Enabled,
			Link: controller.QueueEndpoint.FormatAsRelativeLink(httprouter.Param{Key: queueIDPathParamKey, Value: queue.QueueID})})
	}
	writeJSON(w, ListResult{Result: items, Pages: map[string]string{}})
}

// GetPath returns the endpoint's path
func (controller *QueuesController) GetPath() string {
	return queuesPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *QueuesController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return queuesPath
}

type presenceController struct {
	Router       *dispatcher.LeadRouter
	RouterConfig config.RouterConfig
	available    bool
	path         string
}

// Post checks the member in or out and returns the member's new state
func (controller *presenceController) Post(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	member, err := controller.Router.SetPresence(findParam(params, queueIDPathParamKey), findParam(params, memberIDPathParamKey), controller.available,
		getActor(r, controller.RouterConfig.GetActorHeaderName()))
	if err != nil {
		writeRotationErr(w, err)
		return
	}
	writeJSON(w, newMemberModel(member))
}

// GetPath returns the endpoint's path
func (controller *presenceController) GetPath() string {
	return controller.path
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *presenceController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return formatURL(params, controller.path, queueIDPathParamKey, memberIDPathParamKey)
}

// CheckinController is for /queue/:queueId/member/:memberId/checkin
type CheckinController struct {
	presenceController
}

// NewCheckinController creates the check-in controller
func NewCheckinController(router *dispatcher.LeadRouter, routerConfig config.RouterConfig) *CheckinController {
	return &CheckinController{presenceController{Router: router, RouterConfig: routerConfig, available: true, path: checkinPath}}
}

// CheckoutController is for /queue/:queueId/member/:memberId/checkout
type CheckoutController struct {
	presenceController
}

// NewCheckoutController creates the check-out controller
func NewCheckoutController(router *dispatcher.LeadRouter, routerConfig config.RouterConfig) *CheckoutController {
	return &CheckoutController{presenceController{Router: router, RouterConfig: routerConfig, available: false, path: checkoutPath}}
}

// RotationRequest lists members to put first in rotation, in order
type RotationRequest struct {
	MemberIDs []string `json:"memberIds"`
}

// RotationController is for /queue/:queueId/rotation
type RotationController struct {
	Router       *dispatcher.LeadRouter
	RouterConfig config.RouterConfig
}

// NewRotationController creates the reorder controller
func NewRotationController(router *dispatcher.LeadRouter, routerConfig config.RouterConfig) *RotationController {
	return &RotationController{Router: router, RouterConfig: routerConfig}
}

// Put reorders the rotation and returns the queue
func (controller *RotationController) Put(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
	request := &RotationRequest{}
	if !readJSON(w, r, request) {
		return
	}
	queue, err := controller.Router.Reorder(findParam(params, queueIDPathParamKey), request.MemberIDs, getActor(r, controller.RouterConfig.GetActorHeaderName()))
	if err != nil {
		writeRotationErr(w, err)
		return
	}
	writeJSON(w, newQueueModel(queue))
}

// GetPath returns the endpoint's path
func (controller *RotationController) GetPath() string {
	return rotationPath
}

// FormatAsRelativeLink Format as relative URL of this resource based on the params
func (controller *RotationController) FormatAsRelativeLink(params ...httprouter.Param) string {
	return formatURL(params, rotationPath, queueIDPathParamKey)
}
