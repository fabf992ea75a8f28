package student

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"go-attendance/internal/events"
	"go-attendance/internal/facerec"
	"go-attendance/internal/messaging/kafka"
	"go-attendance/internal/shared/apperror"
	"go-attendance/internal/shared/contextutil"
	studenterrors "go-attendance/internal/student/errors"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Templates below this quality are rejected at registration so weak
	// references never poison later verification.
	registrationQualityThreshold = 0.4

	// Cosine distance under which a probe is treated as the same person as
	// an already-enrolled student.
	duplicateDistanceThreshold = 0.30

	legacyEmbeddingDim = 128
)

//go:generate mockgen -source=student_service.go -destination=mock/student_service_mock.go -package=mock
type Service interface {
	GetByID(ctx context.Context, id string) (StudentResponse, error)
	List(ctx context.Context, page, limit int) ([]StudentResponse, int64, error)
	RegisterFace(ctx context.Context, studentID string, req RegisterFaceRequest) (FaceRegistrationResponse, error)
	TestFaceQuality(ctx context.Context, req FaceQualityRequest) (FaceQualityResponse, error)
	FaceStatus(ctx context.Context, studentID string) (FaceStatusResponse, error)
	UnregisterFace(ctx context.Context, studentID string) error
}

type service struct {
	repo      Repository
	analyzer  *facerec.Analyzer
	faceIndex *FaceIndex
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	analyzer *facerec.Analyzer,
	faceIndex *FaceIndex,
	outboxRepo kafka.OutboxRepository,
	logger *zap.Logger,
) Service {
	if logger == nil {
		logger = zap.L()
	}
	return &service{
		repo:      repo,
		analyzer:  analyzer,
		faceIndex: faceIndex,
		outbox:    outboxRepo,
		logger:    logger.Named("student.service"),
	}
}

func (s *service) GetByID(ctx context.Context, id string) (StudentResponse, error) {
	row, err := s.findStudent(ctx, id)
	if err != nil {
		return StudentResponse{}, err
	}
	return mapToResponse(row), nil
}

func (s *service) List(ctx context.Context, page, limit int) ([]StudentResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	rows, total, err := s.repo.FindAll(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]StudentResponse, len(rows))
	for i := range rows {
		res[i] = mapToResponse(&rows[i])
	}
	return res, total, nil
}

func (s *service) RegisterFace(ctx context.Context, studentID string, req RegisterFaceRequest) (FaceRegistrationResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	row, err := s.findStudent(ctx, studentID)
	if err != nil {
		return FaceRegistrationResponse{}, err
	}

	if row.FaceRegistered && !req.Overwrite {
		return FaceRegistrationResponse{}, studenterrors.ErrFaceAlreadyRegistered
	}

	analysis, err := s.analyze(req.ImageData)
	if err != nil {
		return FaceRegistrationResponse{}, err
	}

	if analysis.QualityScore < registrationQualityThreshold {
		s.logger.Warn("face registration rejected on quality",
			zap.String("request_id", rid),
			zap.String("student_id", studentID),
			zap.Float64("quality_score", analysis.QualityScore),
		)
		return FaceRegistrationResponse{}, studenterrors.ErrFaceQualityTooLow.WithDetails(map[string]any{
			"quality_score": analysis.QualityScore,
			"threshold":     registrationQualityThreshold,
		})
	}

	if err := s.guardDuplicateIdentity(studentID, analysis); err != nil {
		return FaceRegistrationResponse{}, err
	}

	upgraded := row.FaceRegistered
	applyTemplate(row, analysis)

	if err := s.repo.SaveTemplate(ctx, row); err != nil {
		s.logger.Error("save face template failed",
			zap.String("request_id", rid),
			zap.String("student_id", studentID),
			zap.Error(err),
		)
		return FaceRegistrationResponse{}, err
	}

	s.faceIndex.Add(row.ID.String(), IndexableEmbeddings(row))
	s.queueFaceRegisteredEvent(ctx, rid, row, len(analysis.Embeddings))

	s.logger.Info("face template registered",
		zap.String("request_id", rid),
		zap.String("student_id", studentID),
		zap.String("method", row.FaceMethod),
		zap.Float64("quality_score", row.FaceQuality),
		zap.Int("backends", len(analysis.Embeddings)),
	)

	return FaceRegistrationResponse{
		StudentID:    row.ID.String(),
		Method:       row.FaceMethod,
		QualityScore: row.FaceQuality,
		Backends:     backendNames(analysis.Embeddings),
		Upgraded:     upgraded,
	}, nil
}

func (s *service) TestFaceQuality(ctx context.Context, req FaceQualityRequest) (FaceQualityResponse, error) {
	imageBytes, err := facerec.DecodeImageData(req.ImageData)
	if err != nil {
		return FaceQualityResponse{}, apperror.New(apperror.CodeInvalidInput, "Image data could not be decoded", http.StatusBadRequest)
	}

	analysis, err := s.analyzer.Analyze(imageBytes)
	if err != nil {
		// Quality probing reports detection problems as an unsuitable
		// verdict instead of an error.
		var multi *facerec.MultipleFacesError
		switch {
		case errors.Is(err, facerec.ErrNoFaceDetected):
			return FaceQualityResponse{Suitable: false, Reason: "no face detected"}, nil
		case errors.As(err, &multi):
			return FaceQualityResponse{Suitable: false, FacesDetected: multi.Count, Reason: "multiple faces detected"}, nil
		case errors.Is(err, facerec.ErrInvalidImage):
			return FaceQualityResponse{}, apperror.New(apperror.CodeInvalidInput, "Image data could not be decoded", http.StatusBadRequest)
		default:
			return FaceQualityResponse{}, err
		}
	}

	return FaceQualityResponse{
		Suitable:      analysis.QualityScore >= registrationQualityThreshold,
		QualityScore:  analysis.QualityScore,
		FacesDetected: analysis.FacesDetected,
		BackendsUsed:  len(analysis.BackendsUsed),
	}, nil
}

func (s *service) FaceStatus(ctx context.Context, studentID string) (FaceStatusResponse, error) {
	row, err := s.findStudent(ctx, studentID)
	if err != nil {
		return FaceStatusResponse{}, err
	}

	resp := FaceStatusResponse{
		StudentID:      row.ID.String(),
		FaceRegistered: row.FaceRegistered,
		Method:         row.FaceMethod,
		QualityScore:   row.FaceQuality,
		Backends:       backendNames(row.AdvancedEmbeddings),
	}
	if row.FaceRegisteredAt != nil {
		resp.RegisteredAt = row.FaceRegisteredAt.Format(time.RFC3339)
	}
	return resp, nil
}

func (s *service) UnregisterFace(ctx context.Context, studentID string) error {
	row, err := s.findStudent(ctx, studentID)
	if err != nil {
		return err
	}
	if !row.FaceRegistered {
		return studenterrors.ErrFaceNotRegistered
	}

	if err := s.repo.ClearTemplate(ctx, studentID); err != nil {
		return err
	}
	s.faceIndex.Remove(studentID)

	s.logger.Info("face template cleared", zap.String("student_id", studentID))
	return nil
}

func (s *service) findStudent(ctx context.Context, id string) (*Student, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, studenterrors.ErrInvalidStudentID
	}

	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, studenterrors.ErrStudentNotFound
		}
		return nil, err
	}
	return row, nil
}

func (s *service) analyze(imageData string) (*facerec.Analysis, error) {
	imageBytes, err := facerec.DecodeImageData(imageData)
	if err != nil {
		return nil, apperror.New(apperror.CodeInvalidInput, "Image data could not be decoded", http.StatusBadRequest)
	}

	analysis, err := s.analyzer.Analyze(imageBytes)
	if err != nil {
		return nil, mapAnalysisError(err)
	}
	return analysis, nil
}

func (s *service) guardDuplicateIdentity(studentID string, analysis *facerec.Analysis) error {
	if s.faceIndex.Count() == 0 {
		return nil
	}

	// Each backend is checked inside its own partition; a close match in any
	// one space is enough to flag the probe as an already-enrolled face.
	for backend, probe := range analysis.Embeddings {
		if len(probe) == 0 {
			continue
		}
		nearestID, distance, err := s.faceIndex.Nearest(backend, probe)
		if err != nil {
			continue
		}
		if nearestID != studentID && distance < duplicateDistanceThreshold {
			s.logger.Warn("face registration rejected as duplicate identity",
				zap.String("student_id", studentID),
				zap.String("matched_student_id", nearestID),
				zap.String("backend", backend),
				zap.Float64("cosine_distance", distance),
			)
			return studenterrors.ErrFaceAlreadyEnrolledElsewhere
		}
	}
	return nil
}

func (s *service) queueFaceRegisteredEvent(ctx context.Context, rid string, row *Student, backendCount int) {
	if s.outbox == nil {
		return
	}

	event := events.FaceRegisteredEvent{
		EventType:    "face_registered",
		StudentID:    row.ID.String(),
		MatricNo:     row.MatricNo,
		Method:       row.FaceMethod,
		QualityScore: row.FaceQuality,
		BackendCount: backendCount,
		OccurredAt:   time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal face_registered event failed", zap.Error(err))
		return
	}

	if err := s.outbox.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "student",
		AggregateID:   row.ID.String(),
		EventType:     event.EventType,
		Topic:         events.FaceRegisteredTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("queue face_registered event failed",
			zap.String("student_id", row.ID.String()),
			zap.Error(err),
		)
	}
}

func applyTemplate(row *Student, analysis *facerec.Analysis) {
	now := time.Now().UTC()

	row.AdvancedEmbeddings = EmbeddingMap(analysis.Embeddings)
	row.FaceQuality = analysis.QualityScore
	row.FaceRegistered = true
	row.FaceRegisteredAt = &now

	if len(analysis.Embeddings) >= 2 {
		row.FaceMethod = facerec.MethodAdvanced
	} else {
		row.FaceMethod = facerec.MethodBasic
	}

	row.LegacyBackend = ""
	row.LegacyEmbedding = nil
	if emb, ok := analysis.Embeddings["dlib"]; ok && len(emb) == legacyEmbeddingDim {
		vec := pgvector.NewVector(emb)
		row.LegacyBackend = "dlib"
		row.LegacyEmbedding = &vec
	}
}

func mapAnalysisError(err error) error {
	var multi *facerec.MultipleFacesError
	switch {
	case errors.Is(err, facerec.ErrInvalidImage):
		return apperror.New(apperror.CodeInvalidInput, "Image data could not be decoded", http.StatusBadRequest)
	case errors.Is(err, facerec.ErrNoFaceDetected):
		return apperror.New(apperror.CodeVerificationFailed, "No face detected in the image", http.StatusUnprocessableEntity)
	case errors.As(err, &multi):
		return apperror.New(apperror.CodeVerificationFailed, "Multiple faces detected in the image", http.StatusUnprocessableEntity).
			WithDetails(map[string]any{"faces_detected": multi.Count})
	case errors.Is(err, facerec.ErrNoBackendsAvailable):
		return apperror.New(apperror.CodeServiceUnavailable, "No recognition backends are available", http.StatusServiceUnavailable)
	default:
		return err
	}
}

func backendNames(embeddings map[string][]float32) []string {
	if len(embeddings) == 0 {
		return nil
	}
	names := make([]string, 0, len(embeddings))
	for name := range embeddings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mapToResponse(s *Student) StudentResponse {
	return StudentResponse{
		ID:             s.ID.String(),
		MatricNo:       s.MatricNo,
		FullName:       s.FullName,
		Department:     s.Department,
		Level:          s.Level,
		FaceRegistered: s.FaceRegistered,
		FaceMethod:     s.FaceMethod,
		FaceQuality:    s.FaceQuality,
	}
}
