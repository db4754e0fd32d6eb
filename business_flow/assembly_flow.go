// Package businessflow contains the core business logic and use cases for batch assembly and publication
package businessflow

import (
	"context"
	"encoding/json"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
	"github.com/google/uuid"
)

const (
	documentContext = "https://schema.org"
	documentType    = "FAQPage"
)

// AssemblyFlow assembles answered batches into published FAQ documents
type AssemblyFlow interface {
	AssembleBatch(ctx context.Context, customerID uint, batchID string, metadata *ClientMetadata) (*dto.AssembleBatchResponse, error)
	PublishBatch(ctx context.Context, customerID uint, batchID string, metadata *ClientMetadata) (*dto.PublishBatchResponse, error)
	ListBatches(ctx context.Context, customerID uint, metadata *ClientMetadata) (*dto.ListBatchesResponse, error)
}

// AssemblyFlowImpl implements the batch assembly business flow
type AssemblyFlowImpl struct {
	constructRepo repository.FAQConstructRepository
	questionRepo  repository.QuestionRepository
	batchRepo     repository.BatchRepository
}

// NewAssemblyFlow creates a new assembly flow instance
func NewAssemblyFlow(
	constructRepo repository.FAQConstructRepository,
	questionRepo repository.QuestionRepository,
	batchRepo repository.BatchRepository,
) AssemblyFlow {
	return &AssemblyFlowImpl{
		constructRepo: constructRepo,
		questionRepo:  questionRepo,
		batchRepo:     batchRepo,
	}
}

// AssembleBatch builds the FAQ-pairs document for one fully answered
// batch and upserts it keyed by batch id. The answered count must equal
// the construct's requested pair count; otherwise assembly refuses and
// is retried later once the gap is filled. Re-running on an unchanged
// batch produces identical content aside from updated_at.
func (a *AssemblyFlowImpl) AssembleBatch(ctx context.Context, customerID uint, batchID string, metadata *ClientMetadata) (*dto.AssembleBatchResponse, error) {
	parsedBatchID, err := utils.ParseUUID(batchID)
	if err != nil {
		return nil, NewBusinessError("BATCH_NOT_FOUND", "Batch not found", ErrBatchNotFound)
	}

	construct, err := a.constructRepo.ByBatchID(ctx, parsedBatchID)
	if err != nil {
		return nil, NewBusinessError("ASSEMBLY_FAILED", "Failed to load construct", err)
	}
	if construct == nil {
		return nil, NewBusinessError("BATCH_NOT_FOUND", "Batch not found", ErrBatchNotFound)
	}
	if construct.CustomerID != customerID {
		return nil, NewBusinessError("BATCH_ACCESS_DENIED", "Batch access denied", ErrBatchAccessDenied)
	}

	questions, err := a.questionRepo.ListAnsweredByBatchID(ctx, parsedBatchID)
	if err != nil {
		return nil, NewBusinessError("ASSEMBLY_FAILED", "Failed to load answered questions", err)
	}
	if len(questions) != construct.PairCount {
		return nil, NewBusinessErrorf("BATCH_INCOMPLETE",
			"Batch has %d answered questions, expected %d", ErrBatchIncomplete,
			len(questions), construct.PairCount)
	}

	document := BuildFAQPairsDocument(parsedBatchID, questions, construct.Snapshot)
	batch := &models.Batch{
		CustomerID:       construct.CustomerID,
		BatchID:          construct.BatchID,
		BatchClusterID:   construct.BatchClusterID,
		OrganizationName: construct.Snapshot.OrganizationName,
		BrandName:        construct.Snapshot.BrandName,
		ProductName:      construct.Snapshot.ProductName,
		AudienceName:     construct.Snapshot.AudienceName,
		Document:         document,
		Status:           models.BatchStatusGenerated,
	}

	if err := a.batchRepo.UpsertByBatchID(ctx, batch); err != nil {
		return nil, NewBusinessError("ASSEMBLY_FAILED", "Failed to upsert batch", err)
	}

	stored, err := a.batchRepo.ByBatchID(ctx, parsedBatchID)
	if err != nil || stored == nil {
		return nil, NewBusinessError("ASSEMBLY_FAILED", "Failed to reload batch", err)
	}

	return &dto.AssembleBatchResponse{Batch: ToBatchDTO(*stored)}, nil
}

// PublishBatch moves a generated batch to published exactly once
func (a *AssemblyFlowImpl) PublishBatch(ctx context.Context, customerID uint, batchID string, metadata *ClientMetadata) (*dto.PublishBatchResponse, error) {
	parsedBatchID, err := utils.ParseUUID(batchID)
	if err != nil {
		return nil, NewBusinessError("BATCH_NOT_FOUND", "Batch not found", ErrBatchNotFound)
	}

	batch, err := a.batchRepo.ByBatchID(ctx, parsedBatchID)
	if err != nil {
		return nil, NewBusinessError("PUBLISH_FAILED", "Failed to load batch", err)
	}
	if batch == nil {
		return nil, NewBusinessError("BATCH_NOT_FOUND", "Batch not found", ErrBatchNotFound)
	}
	if batch.CustomerID != customerID {
		return nil, NewBusinessError("BATCH_ACCESS_DENIED", "Batch access denied", ErrBatchAccessDenied)
	}

	published, err := a.batchRepo.Publish(ctx, parsedBatchID)
	if err != nil {
		return nil, NewBusinessError("PUBLISH_FAILED", "Failed to publish batch", err)
	}
	if !published {
		return nil, NewBusinessError("BATCH_ALREADY_PUBLISHED", "Batch already published", ErrBatchAlreadyPublished)
	}

	return &dto.PublishBatchResponse{
		BatchID: parsedBatchID.String(),
		Status:  string(models.BatchStatusPublished),
	}, nil
}

// ListBatches returns the customer's published batches
func (a *AssemblyFlowImpl) ListBatches(ctx context.Context, customerID uint, metadata *ClientMetadata) (*dto.ListBatchesResponse, error) {
	batches, err := a.batchRepo.ListPublishedByCustomerID(ctx, customerID)
	if err != nil {
		return nil, NewBusinessError("LIST_BATCHES_FAILED", "Failed to list batches", err)
	}

	resp := &dto.ListBatchesResponse{Batches: make([]dto.BatchDTO, 0, len(batches))}
	for _, batch := range batches {
		resp.Batches = append(resp.Batches, ToBatchDTO(*batch))
	}

	return resp, nil
}

// BuildFAQPairsDocument assembles the client-facing document from the
// answered questions (in creation order) and the construct snapshot. It
// is a pure function of its inputs, so reassembly is deterministic.
func BuildFAQPairsDocument(batchID uuid.UUID, questions []*models.Question, snapshot models.ConfigSnapshot) models.FAQPairsDocument {
	document := models.FAQPairsDocument{
		Context: documentContext,
		Type:    documentType,
		BatchID: batchID.String(),
		Pairs:   make([]models.FAQPair, 0, len(questions)),
	}

	for _, question := range questions {
		pair := models.FAQPair{Question: question.QuestionText}
		if question.Topic != nil {
			pair.Topic = *question.Topic
		}
		if question.AnswerText != nil {
			pair.Answer = *question.AnswerText
		}
		document.Pairs = append(document.Pairs, pair)
	}

	document.Organization = linkedDataOrStub(snapshot.OrganizationJSONLD, "Organization", snapshot.OrganizationName)
	document.Product = linkedDataOrStub(snapshot.ProductJSONLD, "Product", snapshot.ProductName)
	document.Persona = linkedDataOrStub(snapshot.PersonaJSONLD, "Person", snapshot.PersonaName)

	return document
}

// linkedDataOrStub returns the snapshot linked data when present and
// parseable, otherwise a minimal stub naming the entity
func linkedDataOrStub(raw json.RawMessage, entityType, name string) json.RawMessage {
	if len(raw) > 0 && json.Valid(raw) {
		return raw
	}

	stub, _ := json.Marshal(map[string]string{
		"@context": documentContext,
		"@type":    entityType,
		"name":     name,
	})
	return stub
}
