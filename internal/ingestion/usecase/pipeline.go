package usecase

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	employeerepo "timesheetpro-backend/internal/employee/repository"
	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationrepo "timesheetpro-backend/internal/integration/repository"
	uploaddomain "timesheetpro-backend/internal/upload/domain"
	uploadrepo "timesheetpro-backend/internal/upload/repository"
	"timesheetpro-backend/pkg/storage"
)

// Pipeline is the source-independent half of ingestion: dedup check,
// sender filter, format gate, landing, upload row, ledger row. Engines
// only differ in how they discover candidate items.
type Pipeline struct {
	employees employeerepo.EmployeeRepository
	uploads   uploadrepo.UploadRepository
	ledger    integrationrepo.ProcessedFileRepository
	store     *storage.Store
	notifier  Notifier
}

func NewPipeline(employees employeerepo.EmployeeRepository, uploads uploadrepo.UploadRepository, ledger integrationrepo.ProcessedFileRepository, store *storage.Store) *Pipeline {
	return &Pipeline{
		employees: employees,
		uploads:   uploads,
		ledger:    ledger,
		store:     store,
	}
}

// SetNotifier attaches an optional fan-out for landed uploads.
func (p *Pipeline) SetNotifier(notifier Notifier) {
	p.notifier = notifier
}

// process runs candidate items through the pipeline and returns how many
// files landed. A failing item is logged and skipped; it never aborts the
// run. The dedup check runs before any download, and items older than the
// watermark are dropped because both listing protocols are day-granular.
func (p *Pipeline) process(ctx context.Context, source uploaddomain.UploadSource, tag string, items []*ingestiondomain.ExternalItem, since time.Time) int {
	if len(items) == 0 {
		return 0
	}

	directory, err := p.employees.EmailDirectory()
	if err != nil {
		log.Printf("%s Failed to load employee directory: %v", tag, err)
		return 0
	}

	processed := 0
	for _, item := range items {
		if !since.IsZero() && item.ReceivedAt.Before(since) {
			continue
		}

		alreadyDone, err := p.ledger.IsProcessed(source, item.ExternalID)
		if err != nil {
			log.Printf("%s Ledger check failed for %s: %v", tag, item.ExternalID, err)
			continue
		}
		if alreadyDone {
			continue
		}

		owner, err := item.Owner(ctx)
		if err != nil {
			log.Printf("%s Failed to resolve owner of %s: %v", tag, item.ExternalID, err)
			continue
		}
		employeeID, known := directory[strings.ToLower(owner)]
		if !known {
			continue
		}

		files, err := item.Files(ctx)
		if err != nil {
			log.Printf("%s Failed to list files of %s: %v", tag, item.ExternalID, err)
			continue
		}

		landed := 0
		var firstUploadID *string
		for _, att := range files {
			format, ok := storage.ValidateFormat(att.Filename)
			if !ok {
				continue
			}

			content, err := att.Fetch(ctx)
			if err != nil {
				log.Printf("%s Failed to download %s from %s: %v", tag, att.Filename, item.ExternalID, err)
				continue
			}

			path, storedName, err := p.store.Save(content, att.Filename, employeeID)
			if err != nil {
				log.Printf("%s Failed to store %s: %v", tag, att.Filename, err)
				continue
			}

			upload := &uploaddomain.TimesheetUpload{
				EmployeeID: employeeID,
				FilePath:   path,
				FileName:   storedName,
				FileFormat: format,
				Source:     source,
				Status:     uploaddomain.StatusPending,
				Metadata:   buildMetadata(item, att.Filename, len(content)),
			}
			if err := p.uploads.Create(upload); err != nil {
				log.Printf("%s Failed to record upload for %s: %v", tag, att.Filename, err)
				p.store.Delete(path)
				continue
			}

			landed++
			if firstUploadID == nil {
				id := upload.ID
				firstUploadID = &id
			}
			log.Printf("%s Landed %s for employee %s (upload %s)", tag, att.Filename, employeeID, upload.ID)

			if p.notifier != nil {
				p.notifier.UploadLanded(upload)
			}
		}

		if landed > 0 {
			err := p.ledger.MarkProcessed(&integrationdomain.ProcessedFile{
				Source:     source,
				ExternalID: item.ExternalID,
				EmployeeID: employeeID,
				UploadID:   firstUploadID,
			})
			if err != nil {
				log.Printf("%s Failed to record %s in the ledger: %v", tag, item.ExternalID, err)
			}
			processed += landed
		}
	}

	return processed
}

func buildMetadata(item *ingestiondomain.ExternalItem, filename string, size int) string {
	meta := make(map[string]interface{}, len(item.Provenance)+2)
	for k, v := range item.Provenance {
		meta[k] = v
	}
	meta["original_name"] = filename
	meta["size_bytes"] = size

	raw, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(raw)
}
