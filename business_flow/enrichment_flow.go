// Package businessflow contains the core business logic and use cases for linked-data enrichment
package businessflow

import (
	"context"
	"encoding/json"

	"github.com/brandaion/platform/app/dto"
	"github.com/brandaion/platform/models"
	"github.com/brandaion/platform/repository"
	"github.com/brandaion/platform/utils"
)

// faqKeys are stripped from base entity documents during enrichment so
// FAQ content only enters snapshots through published batches
var faqKeys = []string{"faq", "faqs", "faqPairs", "mainEntity", "question", "answer", "acceptedAnswer"}

// EnrichmentFlow rebuilds discovery snapshots from entity linked data and
// published batches. Runs are idempotent and read-only on their sources.
type EnrichmentFlow interface {
	EnrichOrganization(ctx context.Context, customerID uint, metadata *ClientMetadata) (*dto.OrganizationEnrichmentResponse, error)
	EnrichBrand(ctx context.Context, customerID uint, brandID uint, metadata *ClientMetadata) (*dto.BrandEnrichmentResponse, error)
}

// EnrichmentFlowImpl implements the enrichment business flow
type EnrichmentFlowImpl struct {
	organizationRepo repository.OrganizationRepository
	brandRepo        repository.BrandRepository
	productRepo      repository.ProductRepository
	batchRepo        repository.BatchRepository
	snapshotRepo     repository.DiscoverySnapshotRepository
}

// NewEnrichmentFlow creates a new enrichment flow instance
func NewEnrichmentFlow(
	organizationRepo repository.OrganizationRepository,
	brandRepo repository.BrandRepository,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
	snapshotRepo repository.DiscoverySnapshotRepository,
) EnrichmentFlow {
	return &EnrichmentFlowImpl{
		organizationRepo: organizationRepo,
		brandRepo:        brandRepo,
		productRepo:      productRepo,
		batchRepo:        batchRepo,
		snapshotRepo:     snapshotRepo,
	}
}

// EnrichOrganization rebuilds the organization-level snapshot: the base
// organization document with FAQ keys stripped, merged with child brands,
// their products, and aggregate counts.
func (e *EnrichmentFlowImpl) EnrichOrganization(ctx context.Context, customerID uint, metadata *ClientMetadata) (*dto.OrganizationEnrichmentResponse, error) {
	organization, err := getOrganization(ctx, e.organizationRepo, customerID)
	if err != nil {
		if IsOrganizationNotFound(err) {
			return nil, NewBusinessError("ORGANIZATION_NOT_FOUND", "Organization not found", err)
		}
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to resolve organization", err)
	}

	brands, err := e.brandRepo.ListByOrganizationID(ctx, organization.ID)
	if err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to list brands", err)
	}

	brandIDs := make([]uint, 0, len(brands))
	brandNames := make([]string, 0, len(brands))
	brandEntries := make([]map[string]any, 0, len(brands))
	for _, brand := range brands {
		brandIDs = append(brandIDs, brand.ID)
		brandNames = append(brandNames, brand.Name)
		brandEntries = append(brandEntries, entityEntry(brand.Name, brand.JSONLD))
	}

	products, err := e.productRepo.ListByBrandIDs(ctx, brandIDs)
	if err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to list products", err)
	}
	productNames := make([]string, 0, len(products))
	for _, product := range products {
		productNames = append(productNames, product.Name)
	}

	faqCount, err := e.countPublishedPairs(ctx, productNames)
	if err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to count published FAQ pairs", err)
	}

	document := StripFAQKeys(organization.JSONLD)
	if document == nil {
		document = map[string]any{"@context": documentContext, "@type": "Organization", "name": organization.Name}
	}
	document["brands"] = brandEntries
	document["brandCount"] = len(brands)
	document["productCount"] = len(products)
	document["faqCount"] = faqCount

	raw, err := json.Marshal(document)
	if err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to encode snapshot document", err)
	}

	snapshot := &models.DiscoverySnapshot{
		OwnerType:    models.SnapshotOwnerOrganization,
		OwnerID:      organization.ID,
		Document:     raw,
		ChildNames:   brandNames,
		BrandCount:   len(brands),
		ProductCount: len(products),
		FAQCount:     faqCount,
		EnrichedAt:   utils.UTCNow(),
	}
	if err := e.snapshotRepo.UpsertByOwner(ctx, snapshot); err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to store snapshot", err)
	}

	return &dto.OrganizationEnrichmentResponse{Snapshot: ToSnapshotDTO(*snapshot)}, nil
}

// EnrichBrand rebuilds the brand-level snapshot: the brand document plus
// its products and their published FAQ batch documents.
func (e *EnrichmentFlowImpl) EnrichBrand(ctx context.Context, customerID uint, brandID uint, metadata *ClientMetadata) (*dto.BrandEnrichmentResponse, error) {
	organization, err := getOrganization(ctx, e.organizationRepo, customerID)
	if err != nil {
		if IsOrganizationNotFound(err) {
			return nil, NewBusinessError("ORGANIZATION_NOT_FOUND", "Organization not found", err)
		}
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to resolve organization", err)
	}

	brand, err := e.brandRepo.ByID(ctx, brandID)
	if err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to load brand", err)
	}
	if brand == nil || brand.OrganizationID != organization.ID {
		return nil, NewBusinessError("BRAND_NOT_FOUND", "Brand not found", ErrBrandNotFound)
	}

	products, err := e.productRepo.ListByBrandID(ctx, brand.ID)
	if err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to list products", err)
	}

	productNames := make([]string, 0, len(products))
	for _, product := range products {
		productNames = append(productNames, product.Name)
	}

	batches, err := e.batchRepo.ListByProductNames(ctx, productNames)
	if err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to list published batches", err)
	}

	batchesByProduct := make(map[string][]models.FAQPairsDocument)
	faqCount := 0
	for _, batch := range batches {
		batchesByProduct[batch.ProductName] = append(batchesByProduct[batch.ProductName], batch.Document)
		faqCount += len(batch.Document.Pairs)
	}

	productEntries := make([]map[string]any, 0, len(products))
	for _, product := range products {
		entry := entityEntry(product.Name, product.JSONLD)
		if documents := batchesByProduct[product.Name]; len(documents) > 0 {
			entry["faqBatches"] = documents
		}
		productEntries = append(productEntries, entry)
	}

	document := StripFAQKeys(brand.JSONLD)
	if document == nil {
		document = map[string]any{"@context": documentContext, "@type": "Brand", "name": brand.Name}
	}
	document["products"] = productEntries
	document["productCount"] = len(products)
	document["faqCount"] = faqCount

	raw, err := json.Marshal(document)
	if err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to encode snapshot document", err)
	}

	snapshot := &models.DiscoverySnapshot{
		OwnerType:    models.SnapshotOwnerBrand,
		OwnerID:      brand.ID,
		Document:     raw,
		ChildNames:   productNames,
		ProductCount: len(products),
		FAQCount:     faqCount,
		EnrichedAt:   utils.UTCNow(),
	}
	if err := e.snapshotRepo.UpsertByOwner(ctx, snapshot); err != nil {
		return nil, NewBusinessError("ENRICHMENT_FAILED", "Failed to store snapshot", err)
	}

	return &dto.BrandEnrichmentResponse{Snapshot: ToSnapshotDTO(*snapshot)}, nil
}

// countPublishedPairs sums the FAQ pairs in published batches of the
// given products
func (e *EnrichmentFlowImpl) countPublishedPairs(ctx context.Context, productNames []string) (int, error) {
	batches, err := e.batchRepo.ListByProductNames(ctx, productNames)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, batch := range batches {
		count += len(batch.Document.Pairs)
	}
	return count, nil
}

// StripFAQKeys decodes a base entity document and removes FAQ content
// keys at the top level. Returns nil when the input is absent or not a
// JSON object, letting callers fall back to a stub.
func StripFAQKeys(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}

	var document map[string]any
	if err := json.Unmarshal(raw, &document); err != nil {
		return nil
	}

	for _, key := range faqKeys {
		delete(document, key)
	}
	return document
}

// entityEntry builds one child entry for an enrichment document
func entityEntry(name string, raw json.RawMessage) map[string]any {
	entry := map[string]any{"name": name}
	if len(raw) > 0 && json.Valid(raw) {
		entry["jsonld"] = raw
	}
	return entry
}
