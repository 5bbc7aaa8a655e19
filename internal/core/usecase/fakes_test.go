package usecase

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/ishro/aura-pipeline/internal/core/domain"
	"github.com/ishro/aura-pipeline/internal/core/ports"
)

type docRepoFake struct {
	docs      map[string]*domain.Document
	createErr error
	deleted   []string
}

func newDocRepoFake(docs ...*domain.Document) *docRepoFake {
	f := &docRepoFake{docs: map[string]*domain.Document{}}
	for _, d := range docs {
		f.docs[d.ID] = d
	}
	return f
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.createErr != nil {
		return f.createErr
	}
	copyDoc := *doc
	f.docs[doc.ID] = &copyDoc
	return nil
}

func (f *docRepoFake) GetByID(_ context.Context, id string) (*domain.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", errors.New(id))
	}
	copyDoc := *doc
	return &copyDoc, nil
}

func (f *docRepoFake) List(_ context.Context, _, _ int, status domain.DocumentStatus) ([]domain.Document, int, error) {
	out := make([]domain.Document, 0, len(f.docs))
	for _, d := range f.docs {
		if status != "" && d.Status != status {
			continue
		}
		out = append(out, *d)
	}
	return out, len(out), nil
}

func (f *docRepoFake) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	doc, ok := f.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrNotFound, "update status", errors.New(id))
	}
	doc.Status = status
	doc.Error = errMessage
	return nil
}

func (f *docRepoFake) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete document", errors.New(id))
	}
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type stageRepoFake struct {
	rows      map[string]*domain.StageResult
	upsertErr error
	upserts   []domain.StageResult
}

func newStageRepoFake() *stageRepoFake {
	return &stageRepoFake{rows: map[string]*domain.StageResult{}}
}

func stageKey(documentID string, stage domain.Stage) string {
	return documentID + "/" + string(stage)
}

func (f *stageRepoFake) Upsert(_ context.Context, result *domain.StageResult) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	copyRow := *result
	f.rows[stageKey(result.DocumentID, result.Stage)] = &copyRow
	f.upserts = append(f.upserts, copyRow)
	return nil
}

func (f *stageRepoFake) Get(_ context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error) {
	row, ok := f.rows[stageKey(documentID, stage)]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get stage result", errors.New(string(stage)))
	}
	copyRow := *row
	return &copyRow, nil
}

func (f *stageRepoFake) ListByDocument(_ context.Context, documentID string) ([]domain.StageResult, error) {
	out := make([]domain.StageResult, 0)
	for _, row := range f.rows {
		if row.DocumentID == documentID {
			out = append(out, *row)
		}
	}
	return out, nil
}

type predRepoFake struct {
	byID        map[string]*domain.Prediction
	byDoc       map[string]*domain.Prediction
	updateErr   error
	lastUpdated *domain.Prediction
}

func newPredRepoFake(preds ...*domain.Prediction) *predRepoFake {
	f := &predRepoFake{byID: map[string]*domain.Prediction{}, byDoc: map[string]*domain.Prediction{}}
	for _, p := range preds {
		f.byID[p.ID] = p
		f.byDoc[p.DocumentID] = p
	}
	return f
}

func (f *predRepoFake) Upsert(_ context.Context, prediction *domain.Prediction) error {
	copyPred := *prediction
	f.byID[prediction.ID] = &copyPred
	f.byDoc[prediction.DocumentID] = &copyPred
	return nil
}

func (f *predRepoFake) GetByID(_ context.Context, id string) (*domain.Prediction, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get prediction", errors.New(id))
	}
	copyPred := *p
	return &copyPred, nil
}

func (f *predRepoFake) GetByDocumentID(_ context.Context, documentID string) (*domain.Prediction, error) {
	p, ok := f.byDoc[documentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get prediction by document", errors.New(documentID))
	}
	copyPred := *p
	return &copyPred, nil
}

func (f *predRepoFake) List(context.Context) ([]domain.Prediction, error) {
	out := make([]domain.Prediction, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *predRepoFake) UpdateReview(_ context.Context, prediction *domain.Prediction) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	copyPred := *prediction
	f.byID[prediction.ID] = &copyPred
	f.byDoc[prediction.DocumentID] = &copyPred
	f.lastUpdated = &copyPred
	return nil
}

type storageFake struct {
	objects map[string]string
	saveErr error
	deleted []string
}

func newStorageFake() *storageFake {
	return &storageFake{objects: map[string]string{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	body, ok := f.objects[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open object", errors.New(key))
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func (f *storageFake) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type queueFake struct {
	jobs []ports.StageJob
	err  error
}

func (f *queueFake) PublishStageJob(_ context.Context, job ports.StageJob) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *queueFake) SubscribeStageJobs(context.Context, func(context.Context, ports.StageJob) error) error {
	return errors.New("not implemented")
}

type extractorFake struct {
	text string
	err  error
}

func (f *extractorFake) Extract(context.Context, string, io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type structurerFake struct {
	report domain.StructuredReport
	err    error
	input  string
}

func (f *structurerFake) Structure(_ context.Context, text string) (domain.StructuredReport, error) {
	if f.err != nil {
		return domain.StructuredReport{}, f.err
	}
	f.input = text
	return f.report, nil
}

type classifierFake struct {
	prediction domain.Prediction
	err        error
	input      string
}

func (f *classifierFake) Classify(_ context.Context, input string) (domain.Prediction, error) {
	if f.err != nil {
		return domain.Prediction{}, f.err
	}
	f.input = input
	return f.prediction, nil
}
