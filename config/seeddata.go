package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/go-ini/ini"
	"github.com/rs/zerolog/log"
)

const (
	initialQueuesSection = "initial-queues"
	queueSectionPrefix   = "queue."
	ruleSeparator        = "|"
	memberNameSeparator  = ":"
	defaultQueuePriority = 100
)

// setupSeedDataConfiguration reads [initial-queues] (queue id = name) and one optional [queue.<id>]
// section per queue holding its rules, members, check-in window and advanced settings
func setupSeedDataConfiguration(cfg *ini.File, configuration *Config) {
	queuesSection := cfg.Section(initialQueuesSection)
	seedData := SeedData{Queues: make([]SeedQueue, 0, len(queuesSection.Keys()))}
	for _, key := range queuesSection.Keys() {
		seedQueue := SeedQueue{ID: key.Name(), Name: key.String(), Priority: defaultQueuePriority, Enabled: true}
		if section, err := cfg.GetSection(queueSectionPrefix + key.Name()); err == nil {
			readQueueSection(section, &seedQueue)
		}
		seedData.Queues = append(seedData.Queues, seedQueue)
	}
	seedData.DataHash = hashSeedQueues(seedData.Queues)
	configuration.seedData = seedData
}

func readQueueSection(section *ini.Section, seedQueue *SeedQueue) {
	seedQueue.Priority = section.Key("priority").MustInt(defaultQueuePriority)
	seedQueue.Enabled = section.Key("enabled").MustBool(true)
	seedQueue.Rules = splitNonEmpty(section.Key("rules").String(), ruleSeparator)
	for _, token := range splitNonEmpty(section.Key("members").String(), ",") {
		member := SeedMember{ID: token, Name: token}
		if parts := strings.SplitN(token, memberNameSeparator, 2); len(parts) == 2 {
			member = SeedMember{ID: strings.TrimSpace(parts[0]), Name: strings.TrimSpace(parts[1])}
		}
		seedQueue.Members = append(seedQueue.Members, member)
	}
	seedQueue.CheckinEnabled = section.Key("checkin-enabled").MustBool(false)
	seedQueue.CheckinDays = splitNonEmpty(section.Key("checkin-days").String(), ",")
	seedQueue.CheckinStart = section.Key("checkin-start").String()
	seedQueue.CheckinEnd = section.Key("checkin-end").String()
	seedQueue.RequireCheckin = section.Key("require-checkin").MustBool(false)
	seedQueue.QREnabled = section.Key("qr-enabled").MustBool(false)
	seedQueue.RedistributionActive = section.Key("redistribution-active").MustBool(true)
	seedQueue.PreservePosition = section.Key("preserve-position").MustBool(false)
	seedQueue.EscalationTarget = section.Key("escalation-target").In("none", []string{"none", "nextQueue", "roulette"})
	seedQueue.AttendanceTimeoutMinutes = section.Key("attendance-timeout-minutes").MustUint(0)
	seedQueue.RotationPauseMinutes = section.Key("rotation-pause-minutes").MustUint(0)
	seedQueue.BusinessHoursStart = section.Key("business-hours-start").String()
	seedQueue.BusinessHoursEnd = section.Key("business-hours-end").String()
}

func splitNonEmpty(value string, separator string) []string {
	result := make([]string, 0)
	for _, token := range strings.Split(value, separator) {
		if trimmed := strings.TrimSpace(token); len(trimmed) > 0 {
			result = append(result, trimmed)
		}
	}
	return result
}

func hashSeedQueues(queues []SeedQueue) string {
	encoded, err := json.Marshal(queues)
	if err != nil {
		log.Error().Err(err).Msg("could not hash seed data")
		return ""
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}
