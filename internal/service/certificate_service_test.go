package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/viralacademy/academy-api/internal/domain"
)

type fakeCertificateRepo struct {
	certs      map[string]*domain.Certificate
	createErr  error
	raceWinner *domain.Certificate
	creates    int
}

func newFakeCertificateRepo() *fakeCertificateRepo {
	return &fakeCertificateRepo{certs: map[string]*domain.Certificate{}}
}

func certKey(userID, courseID uuid.UUID) string {
	return userID.String() + "/" + courseID.String()
}

func (f *fakeCertificateRepo) Create(_ context.Context, cert *domain.Certificate) (*domain.Certificate, error) {
	f.creates++
	key := certKey(cert.UserID, cert.CourseID)
	if f.createErr != nil {
		if f.raceWinner != nil {
			f.certs[key] = f.raceWinner
		}
		return nil, f.createErr
	}
	copied := *cert
	copied.ID = uuid.New()
	f.certs[key] = &copied
	return &copied, nil
}

func (f *fakeCertificateRepo) FindByUserAndCourse(_ context.Context, userID, courseID uuid.UUID) (*domain.Certificate, error) {
	if cert, ok := f.certs[certKey(userID, courseID)]; ok {
		return cert, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCertificateRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Certificate, error) {
	var out []domain.Certificate
	for _, cert := range f.certs {
		if cert.UserID == userID {
			out = append(out, *cert)
		}
	}
	return out, nil
}

type fakeCertMailer struct {
	sent []string
	err  error
}

func (f *fakeCertMailer) SendCertificateIssued(_ context.Context, email, courseTitle, serialCode string) error {
	f.sent = append(f.sent, email+" "+courseTitle+" "+serialCode)
	return f.err
}

func newCertificateFixture() (*CertificateService, *fakeCertificateRepo, *fakeCatalogRepo, *fakeProgressRepo, *fakeStorage, *fakeCertMailer) {
	certs := newFakeCertificateRepo()
	catalog := newFakeCatalogRepo()
	progress := newFakeProgressRepo()
	storage := &fakeStorage{}
	mailer := &fakeCertMailer{}
	svc := NewCertificateService(certs, progress, catalog, storage, mailer, "academy-assets")
	return svc, certs, catalog, progress, storage, mailer
}

func completedCourse(catalog *fakeCatalogRepo, progress *fakeProgressRepo, user *domain.User) uuid.UUID {
	courseID := uuid.New()
	catalog.courses[courseID] = &domain.Course{ID: courseID, Title: "Go desde cero", Published: true}
	catalog.lessonsByCourse[courseID] = 3
	progress.enroll(user.ID, courseID)
	progress.completed[user.ID] = map[uuid.UUID]int{courseID: 3}
	return courseID
}

func TestIssueGrantsCertificateWhenCourseCompleted(t *testing.T) {
	svc, _, catalog, progress, _, mailer := newCertificateFixture()
	user := &domain.User{ID: uuid.New(), Email: "ana@example.com", Role: domain.RoleStudent}
	courseID := completedCourse(catalog, progress, user)

	cert, err := svc.Issue(context.Background(), user, courseID)
	if err != nil {
		t.Fatalf("Issue() err = %v", err)
	}
	if cert.SerialCode == "" {
		t.Fatal("expected a serial code")
	}
	if cert.SignatureKey == nil || *cert.SignatureKey != signatureObjectKey {
		t.Fatalf("signature key = %v, want %q", cert.SignatureKey, signatureObjectKey)
	}
	if len(mailer.sent) != 1 || !strings.Contains(mailer.sent[0], "Go desde cero") {
		t.Fatalf("mailer sent = %v, want one message naming the course", mailer.sent)
	}
}

func TestIssueRejectsIncompleteCourse(t *testing.T) {
	svc, _, catalog, progress, _, _ := newCertificateFixture()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}
	courseID := completedCourse(catalog, progress, user)
	progress.completed[user.ID][courseID] = 2

	if _, err := svc.Issue(context.Background(), user, courseID); !errors.Is(err, ErrCourseNotCompleted) {
		t.Fatalf("Issue() err = %v, want ErrCourseNotCompleted", err)
	}
}

func TestIssueRejectsCourseWithoutLessons(t *testing.T) {
	svc, _, catalog, progress, _, _ := newCertificateFixture()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}
	courseID := completedCourse(catalog, progress, user)
	catalog.lessonsByCourse[courseID] = 0
	progress.completed[user.ID][courseID] = 0

	if _, err := svc.Issue(context.Background(), user, courseID); !errors.Is(err, ErrCourseNotCompleted) {
		t.Fatalf("Issue() err = %v, want ErrCourseNotCompleted", err)
	}
}

func TestIssueRequiresEnrollment(t *testing.T) {
	svc, _, catalog, _, _, _ := newCertificateFixture()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}
	courseID := uuid.New()
	catalog.courses[courseID] = &domain.Course{ID: courseID, Published: true}

	if _, err := svc.Issue(context.Background(), user, uuid.New()); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("unknown course err = %v, want ErrCourseNotFound", err)
	}
	if _, err := svc.Issue(context.Background(), user, courseID); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("not enrolled err = %v, want ErrNotEnrolled", err)
	}
}

func TestIssueIsIdempotent(t *testing.T) {
	svc, certs, catalog, progress, _, mailer := newCertificateFixture()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}
	courseID := completedCourse(catalog, progress, user)

	first, err := svc.Issue(context.Background(), user, courseID)
	if err != nil {
		t.Fatalf("first Issue() err = %v", err)
	}
	second, err := svc.Issue(context.Background(), user, courseID)
	if err != nil {
		t.Fatalf("second Issue() err = %v", err)
	}
	if second.SerialCode != first.SerialCode {
		t.Fatalf("serial changed between calls: %q then %q", first.SerialCode, second.SerialCode)
	}
	if certs.creates != 1 {
		t.Fatalf("creates = %d, want 1", certs.creates)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("mailer sent %d messages, want 1", len(mailer.sent))
	}
}

func TestIssueRecoversFromConcurrentInsert(t *testing.T) {
	svc, certs, catalog, progress, _, _ := newCertificateFixture()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}
	courseID := completedCourse(catalog, progress, user)
	winner := &domain.Certificate{ID: uuid.New(), UserID: user.ID, CourseID: courseID, SerialCode: "VA-RACE-0001", IssuedAt: time.Now()}
	certs.createErr = errors.New("duplicate key value violates unique constraint")
	certs.raceWinner = winner

	cert, err := svc.Issue(context.Background(), user, courseID)
	if err != nil {
		t.Fatalf("Issue() err = %v, want the concurrent winner", err)
	}
	if cert.SerialCode != winner.SerialCode {
		t.Fatalf("serial = %q, want %q", cert.SerialCode, winner.SerialCode)
	}
}

func TestIssueSurvivesMailerFailure(t *testing.T) {
	svc, _, catalog, progress, _, mailer := newCertificateFixture()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}
	courseID := completedCourse(catalog, progress, user)
	mailer.err = errors.New("smtp down")

	if _, err := svc.Issue(context.Background(), user, courseID); err != nil {
		t.Fatalf("Issue() err = %v, mailer failures must not block issuance", err)
	}
}

func TestSignatureURL(t *testing.T) {
	svc, _, catalog, progress, _, _ := newCertificateFixture()
	user := &domain.User{ID: uuid.New(), Role: domain.RoleStudent}
	courseID := completedCourse(catalog, progress, user)

	cert, err := svc.Issue(context.Background(), user, courseID)
	if err != nil {
		t.Fatalf("Issue() err = %v", err)
	}
	url, err := svc.SignatureURL(context.Background(), cert)
	if err != nil {
		t.Fatalf("SignatureURL() err = %v", err)
	}
	if want := "https://storage.test/academy-assets/" + signatureObjectKey; url != want {
		t.Fatalf("url = %q, want %q", url, want)
	}

	bare := &domain.Certificate{}
	if url, err := svc.SignatureURL(context.Background(), bare); err != nil || url != "" {
		t.Fatalf("bare certificate url = %q, err = %v, want empty and nil", url, err)
	}
}

func TestUploadSignature(t *testing.T) {
	svc, _, _, _, storage, _ := newCertificateFixture()

	if err := svc.UploadSignature(context.Background(), nil, "image/png"); err == nil {
		t.Fatal("expected an error for an empty image")
	}
	if err := svc.UploadSignature(context.Background(), []byte("png-bytes"), "image/png"); err != nil {
		t.Fatalf("UploadSignature() err = %v", err)
	}
	if got := string(storage.objects[signatureObjectKey]); got != "png-bytes" {
		t.Fatalf("stored object = %q, want the uploaded bytes", got)
	}
}
