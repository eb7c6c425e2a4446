package redistribution

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

const (
	csvIDColumn        = "id"
	batchIDAttribute   = "batchId"
	importedAttribute  = "imported"
	syntheticAttribute = "synthetic"
)

// ImportPayload describes a batch of leads to put in the archive. With CSV the leads come from its rows,
// at most Quantity of them when Quantity is set; without CSV Quantity synthetic leads are created.
type ImportPayload struct {
	Quantity    int      `json:"quantity"`
	Destination string   `json:"destination"`
	Tags        []string `json:"tags,omitempty"`
	CSV         string   `json:"csv,omitempty"`
	RequestedBy string   `json:"requestedBy,omitempty"`
}

// ImportResult reports the created batch
type ImportResult struct {
	BatchID string       `json:"batchId"`
	Created int          `json:"created"`
	Leads   []*data.Lead `json:"leads"`
}

// ImportBatch creates the leads and adds them in front of the archive in one write
func (worker *WorkerImpl) ImportBatch(payload *ImportPayload) (*ImportResult, error) {
	if payload == nil || payload.Quantity < 0 {
		return nil, ErrInvalidImport
	}
	batchID := xid.New().String()
	var leads []*data.Lead
	var err error
	if len(strings.TrimSpace(payload.CSV)) > 0 {
		leads, err = leadsFromCSV(strings.NewReader(payload.CSV), batchID, payload.Quantity)
	} else {
		leads, err = syntheticLeads(batchID, payload.Quantity)
	}
	if err != nil {
		return nil, err
	}
	if maxQuantity := worker.redistConfig.GetMaxImportQuantity(); maxQuantity > 0 && uint(len(leads)) > maxQuantity {
		return nil, ErrInvalidImport
	}
	tags := append([]string{}, payload.Tags...)
	if len(payload.Destination) > 0 {
		tags = append(tags, payload.Destination)
	}
	// the first lead of the batch gets the newest timestamp so the batch keeps its order at the front
	now := worker.router.Now()
	poolLeads := make([]*data.PoolLead, 0, len(leads))
	for index, lead := range leads {
		poolLead, leadErr := data.NewArchivedLead(lead, data.ReasonImported, tags, now.Add(-time.Duration(index)*time.Microsecond))
		if leadErr != nil {
			return nil, leadErr
		}
		poolLead.BatchID = batchID
		poolLeads = append(poolLeads, poolLead)
	}
	if err = worker.poolLeadRepo.Add(poolLeads...); err != nil {
		return nil, err
	}
	log.Info().Str("batchId", batchID).Int("created", len(leads)).Msg("imported leads into archive")
	return &ImportResult{BatchID: batchID, Created: len(leads), Leads: leads}, nil
}

func syntheticLeads(batchID string, quantity int) ([]*data.Lead, error) {
	if quantity <= 0 {
		return nil, ErrInvalidImport
	}
	leads := make([]*data.Lead, 0, quantity)
	for index := 0; index < quantity; index++ {
		lead, err := data.NewLead(fmt.Sprintf("%s-%d", batchID, index+1), map[string]interface{}{
			batchIDAttribute: batchID, syntheticAttribute: true, importedAttribute: true})
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, nil
}

// leadsFromCSV reads a header row of field names followed by one lead per row. A row without an id
// column value gets a generated id; empty values are kept as empty strings.
func leadsFromCSV(reader io.Reader, batchID string, limit int) ([]*data.Lead, error) {
	csvReader := csv.NewReader(reader)
	csvReader.FieldsPerRecord = -1
	csvReader.TrimLeadingSpace = true
	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	for index := range header {
		header[index] = strings.TrimSpace(header[index])
	}
	leads := make([]*data.Lead, 0)
	for limit <= 0 || len(leads) < limit {
		record, readErr := csvReader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, readErr)
		}
		attributes := map[string]interface{}{batchIDAttribute: batchID, importedAttribute: true}
		leadID := ""
		for index, column := range header {
			if len(column) <= 0 || index >= len(record) {
				continue
			}
			if strings.EqualFold(column, csvIDColumn) {
				leadID = strings.TrimSpace(record[index])
				continue
			}
			attributes[column] = record[index]
		}
		if len(leadID) <= 0 {
			leadID = xid.New().String()
		}
		lead, leadErr := data.NewLead(leadID, attributes)
		if leadErr != nil {
			return nil, leadErr
		}
		leads = append(leads, lead)
	}
	if len(leads) <= 0 {
		return nil, ErrInvalidImport
	}
	return leads, nil
}
