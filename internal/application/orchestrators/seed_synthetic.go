package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	adminStore "chemistmap/internal/adapters/storage/admin"
	"chemistmap/internal/domain/admin"
	"chemistmap/internal/domain/member"
	"chemistmap/internal/domain/note"
)

// SyntheticSeedDeps holds the stores needed for development data seeding.
type SyntheticSeedDeps struct {
	AdminStore  synAdminStore
	MemberStore synMemberStore
	NoteStore   synNoteStore
	Now         func() time.Time
}

type synAdminStore interface {
	Insert(ctx context.Context, a admin.Admin) error
	Count(ctx context.Context, filter adminStore.ListFilter) (int, error)
}

type synMemberStore interface {
	Insert(ctx context.Context, m member.Member) error
	UpdateNotes(ctx context.Context, id, notes string, now time.Time) error
}

type synNoteStore interface {
	Insert(ctx context.Context, n note.MemberNote) error
}

var synAdmins = []struct{ name, email string }{
	{"Pastor Ade", "ade@chemistmap.local"},
	{"Sister Bola", "bola@chemistmap.local"},
	{"Brother Chidi", "chidi@chemistmap.local"},
}

var synMembers = []struct {
	name, gender, relationship, occupation, unit string
	month, day                                    int
}{
	{"Jane Doe", member.GenderFemale, member.RelationshipSingle, "Nurse", "", 3, 14},
	{"John Okafor", member.GenderMale, member.RelationshipMarried, "Engineer", "Choir", 7, 2},
	{"Mary Ann Bello", member.GenderFemale, member.RelationshipDating, "Teacher", "Ushering", 11, 5},
	{"Tunde Adeyemi", member.GenderMale, member.RelationshipSingle, "Student", "", 1, 30},
	{"Grace Eze", member.GenderFemale, member.RelationshipMarried, "Pharmacist", "Hospitality", 5, 19},
	{"Samuel Musa", member.GenderMale, member.RelationshipSingle, "Chemist", "Media", 9, 9},
	{"Esther Ojo", member.GenderFemale, member.RelationshipSingle, "Lab technician", "", 12, 25},
	{"David Nwosu", member.GenderMale, member.RelationshipDating, "Accountant", "Choir", 4, 1},
	{"Ruth Ibrahim", member.GenderFemale, member.RelationshipMarried, "Designer", "", 6, 17},
	{"Peter Obi", member.GenderMale, member.RelationshipSingle, "Driver", "Protocol", 8, 8},
	{"Deborah Lawal", member.GenderFemale, member.RelationshipSingle, "Banker", "", 2, 11},
	{"Joseph Bassey", member.GenderMale, member.RelationshipMarried, "Doctor", "Sanctuary", 10, 23},
}

// ExecuteSeedSynthetic populates an empty database with admins, members and
// notes for local development. It is idempotent: it does nothing once any
// admin exists.
func ExecuteSeedSynthetic(ctx context.Context, deps SyntheticSeedDeps) error {
	count, err := deps.AdminStore.Count(ctx, adminStore.ListFilter{})
	if err != nil {
		return fmt.Errorf("seed_synthetic: count admins: %w", err)
	}
	if count > 0 {
		slog.Info("seed_event", "event", "synthetic_skip", "reason", "already_seeded")
		return nil
	}

	now := deps.Now()
	var seeded []admin.Admin
	for _, a := range synAdmins {
		entity := admin.Admin{ID: uuid.New().String(), Name: a.name, Email: a.email, CreatedAt: now, UpdatedAt: now}
		if err := deps.AdminStore.Insert(ctx, entity); err != nil {
			return fmt.Errorf("seed admin %s: %w", a.email, err)
		}
		seeded = append(seeded, entity)
	}

	for i, s := range synMembers {
		in := member.Intake{
			FullName:           s.name,
			Gender:             s.gender,
			Phone:              fmt.Sprintf("0803%07d", 1000+i),
			Email:              fmt.Sprintf("member%02d@example.com", i+1),
			Address:            fmt.Sprintf("%d Palm Avenue", 10+i),
			RelationshipStatus: s.relationship,
			Occupation:         s.occupation,
			ServiceUnitStatus:  member.AnswerNo,
			ServiceUnitName:    s.unit,
			Reminder:           member.AnswerYes,
			BirthMonth:         s.month,
			BirthDay:           s.day,
		}
		if s.unit != "" {
			in.ServiceUnitStatus = member.AnswerYes
		}
		if i%4 == 3 {
			in.Reminder = member.AnswerNo
		}

		// Every fourth member stays unassigned.
		adminID := ""
		var author admin.Admin
		if i%4 != 0 {
			author = seeded[i%len(seeded)]
			adminID = author.ID
		}

		created := now.Add(-time.Duration(len(synMembers)-i) * 24 * time.Hour)
		m := in.ToMember(uuid.New().String(), adminID, created)
		if err := deps.MemberStore.Insert(ctx, m); err != nil {
			return fmt.Errorf("seed member %s: %w", s.name, err)
		}

		if adminID == "" {
			continue
		}
		n := note.MemberNote{
			ID:        uuid.New().String(),
			MemberID:  m.ID,
			Body:      fmt.Sprintf("Welcomed %s after service and shared contact details.", s.name),
			AdminID:   author.ID,
			AdminName: author.Name,
			CreatedAt: created.Add(2 * time.Hour),
		}
		if err := deps.NoteStore.Insert(ctx, n); err != nil {
			return fmt.Errorf("seed note for %s: %w", s.name, err)
		}
		if err := deps.MemberStore.UpdateNotes(ctx, m.ID, n.Body, n.CreatedAt); err != nil {
			return fmt.Errorf("seed latest note for %s: %w", s.name, err)
		}
	}

	slog.Info("seed_event", "event", "synthetic_seeded", "admins", len(seeded), "members", len(synMembers))
	return nil
}
