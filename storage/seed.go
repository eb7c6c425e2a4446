package storage

import (
	"database/sql"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/zerolog/log"
)

// QueueFromSeed converts a configured queue into the model. Malformed rule expressions are kept as rules that
// never match.
func QueueFromSeed(seedQueue config.SeedQueue) (*data.Queue, error) {
	queue, err := data.NewQueue(seedQueue.ID, seedQueue.Name, seedQueue.Priority)
	if err != nil {
		return nil, err
	}
	queue.Enabled = seedQueue.Enabled
	for _, expression := range seedQueue.Rules {
		rule, ruleErr := data.ParseRuleExpression(expression)
		if ruleErr != nil {
			log.Warn().Err(ruleErr).Str("queueId", seedQueue.ID).Str("rule", expression).Msg("malformed rule will never match")
		}
		queue.Rules = append(queue.Rules, rule)
	}
	for index, seedMember := range seedQueue.Members {
		member, memberErr := data.NewMember(seedQueue.ID, seedMember.ID, index+1)
		if memberErr != nil {
			return nil, memberErr
		}
		member.Name = seedMember.Name
		queue.Members = append(queue.Members, member)
	}
	queue.CheckinWindow = data.CheckinWindow{Enabled: seedQueue.CheckinEnabled, DaysOfWeek: seedQueue.CheckinDays, StartTime: seedQueue.CheckinStart,
		EndTime: seedQueue.CheckinEnd, RequireCheckin: seedQueue.RequireCheckin, QREnabled: seedQueue.QREnabled}
	queue.AdvancedConfig = data.AdvancedConfig{RedistributionActive: seedQueue.RedistributionActive, PreservePositionWhenUnavailable: seedQueue.PreservePosition,
		EscalationTarget: data.EscalationTarget(seedQueue.EscalationTarget), AttendanceTimeoutMinutes: seedQueue.AttendanceTimeoutMinutes,
		RotationPauseMinutes: seedQueue.RotationPauseMinutes, BusinessHoursStart: seedQueue.BusinessHoursStart, BusinessHoursEnd: seedQueue.BusinessHoursEnd}
	queue.QuickFix()
	return queue, nil
}

// mergeRuntimeState keeps the rotation pointer, received count and presence of members an existing queue already has
func mergeRuntimeState(seeded *data.Queue, existing *data.Queue) {
	seeded.ID = existing.ID
	seeded.CreatedAt = existing.CreatedAt
	seeded.ReceivedCount = existing.ReceivedCount
	if seeded.FindMember(existing.NextMemberID) != nil {
		seeded.NextMemberID = existing.NextMemberID
	}
	for _, member := range seeded.Members {
		if previous := existing.FindMember(member.MemberID); previous != nil {
			member.ID = previous.ID
			member.CreatedAt = previous.CreatedAt
			member.Active = previous.Active
			member.AvailableNow = previous.AvailableNow
			member.LastCheckIn = previous.LastCheckIn
			member.OpenLeadLimit = previous.OpenLeadLimit
		}
	}
}

// SeedQueues stores the configured queues once per configuration change. Seeding is skipped when another
// instance is seeding or the configuration did not change since the last seeding.
func SeedQueues(dataAccessor DataAccessor, seedDataConfig config.SeedDataConfig) error {
	seedData := seedDataConfig.GetSeedData()
	appRepo := dataAccessor.GetAppRepository()
	err := appRepo.StartAppInit(&seedData)
	switch err {
	case nil:
	case ErrNoDataChangeFromInitialized, ErrAppInitializing, ErrOptimisticAppInit:
		log.Info().Err(err).Msg("skipping queue seeding")
		return nil
	default:
		return err
	}
	queueRepo := dataAccessor.GetQueueRepository()
	for _, seedQueue := range seedData.Queues {
		queue, convertErr := QueueFromSeed(seedQueue)
		if convertErr != nil {
			log.Error().Err(convertErr).Str("queueId", seedQueue.ID).Msg("could not convert seed queue")
			continue
		}
		existing, getErr := queueRepo.Get(queue.QueueID)
		if getErr == nil {
			mergeRuntimeState(queue, existing)
		} else if getErr != sql.ErrNoRows {
			return getErr
		}
		if _, err = queueRepo.Store(queue); err != nil {
			log.Error().Err(err).Str("queueId", queue.QueueID).Msg("could not seed queue")
			return err
		}
	}
	return appRepo.CompleteAppInit()
}
