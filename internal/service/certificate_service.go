package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
	"github.com/viralacademy/academy-api/internal/repository/ports"
	"github.com/viralacademy/academy-api/internal/util"
)

var (
	ErrCourseNotCompleted  = errors.New("course is not completed yet")
	ErrCertificateNotFound = errors.New("certificate not found")
)

// signatureObjectKey is where the admin-uploaded signature image lives; every
// certificate issued after an upload references the same object.
const signatureObjectKey = "certificates/signature.png"

type CertificateMailer interface {
	SendCertificateIssued(ctx context.Context, email, courseTitle, serialCode string) error
}

type CertificateService struct {
	certificates ports.CertificateRepository
	enrollments  ports.EnrollmentRepository
	courses      ports.CourseRepository
	storage      ports.ObjectStorage
	mailer       CertificateMailer
	bucket       string
	now          func() time.Time
}

func NewCertificateService(certificates ports.CertificateRepository, enrollments ports.EnrollmentRepository, courses ports.CourseRepository, storage ports.ObjectStorage, mailer CertificateMailer, bucket string) *CertificateService {
	return &CertificateService{
		certificates: certificates,
		enrollments:  enrollments,
		courses:      courses,
		storage:      storage,
		mailer:       mailer,
		bucket:       bucket,
		now:          time.Now,
	}
}

// Issue grants a certificate once every published lesson of the course is
// completed. Calling it again returns the existing certificate.
func (s *CertificateService) Issue(ctx context.Context, user *domain.User, courseID uuid.UUID) (*domain.Certificate, error) {
	if existing, err := s.certificates.FindByUserAndCourse(ctx, user.ID, courseID); err == nil {
		return existing, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if _, err := s.enrollments.FindByUserAndCourse(ctx, user.ID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotEnrolled
		}
		return nil, err
	}

	total, err := s.courses.CountPublishedLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}
	completed, err := s.enrollments.CountCompletedLessons(ctx, user.ID, courseID)
	if err != nil {
		return nil, err
	}
	if total == 0 || completed < total {
		return nil, ErrCourseNotCompleted
	}

	serial, err := util.GenerateSerialCode()
	if err != nil {
		return nil, err
	}
	signature := signatureObjectKey
	cert, err := s.certificates.Create(ctx, &domain.Certificate{
		UserID:       user.ID,
		CourseID:     courseID,
		SerialCode:   serial,
		SignatureKey: &signature,
		IssuedAt:     s.now(),
	})
	if err != nil {
		// A concurrent request may have issued it first; the unique
		// constraint on (user_id, course_id) decides the winner.
		if existing, lookupErr := s.certificates.FindByUserAndCourse(ctx, user.ID, courseID); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}

	if s.mailer != nil {
		_ = s.mailer.SendCertificateIssued(ctx, user.Email, course.Title, cert.SerialCode)
	}
	return cert, nil
}

func (s *CertificateService) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Certificate, error) {
	return s.certificates.ListByUser(ctx, userID)
}

func (s *CertificateService) Get(ctx context.Context, userID, courseID uuid.UUID) (*domain.Certificate, error) {
	cert, err := s.certificates.FindByUserAndCourse(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCertificateNotFound
		}
		return nil, err
	}
	return cert, nil
}

// SignatureURL returns a short-lived link to the certificate's signature
// image, when one was ever uploaded.
func (s *CertificateService) SignatureURL(ctx context.Context, cert *domain.Certificate) (string, error) {
	if cert.SignatureKey == nil || s.storage == nil {
		return "", nil
	}
	return s.storage.PresignGet(ctx, s.bucket, *cert.SignatureKey, 15*time.Minute)
}

// UploadSignature replaces the signature image stamped on new certificates.
func (s *CertificateService) UploadSignature(ctx context.Context, contents []byte, contentType string) error {
	if len(contents) == 0 {
		return errors.New("empty signature image")
	}
	_, err := s.storage.Upload(ctx, s.bucket, signatureObjectKey, contentType, bytes.NewReader(contents), int64(len(contents)))
	return err
}
