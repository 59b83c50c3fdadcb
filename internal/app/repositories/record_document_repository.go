package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deptce/mentorship/internal/app/models"
	"github.com/deptce/mentorship/internal/pkg/apperrors"
	"github.com/deptce/mentorship/internal/pkg/logger"
	"github.com/deptce/mentorship/internal/pkg/normalize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document field names of the users collection
const (
	fieldEmail      = "email"
	fieldMentorForm = "mentorForm"
	fieldUpdated    = "updated"
)

// RecordDocumentRepository reads and writes records in the document store.
// Stored records are normalized on every read, so malformed documents never
// leave this layer.
type RecordDocumentRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewRecordDocumentRepository creates a repository over the given collection
func NewRecordDocumentRepository(coll *mongo.Collection) *RecordDocumentRepository {
	return &RecordDocumentRepository{
		coll: coll,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns every document in insertion order
func (r *RecordDocumentRepository) List(ctx context.Context) ([]*models.RecordDocument, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		logger.Error().Err(err).Msg("Error querying record documents")
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.RecordDocument
	for cursor.Next(ctx) {
		docs = append(docs, decodeRecordDocument(cursor.Current))
	}
	if err := cursor.Err(); err != nil {
		logger.Error().Err(err).Msg("Cursor error while listing record documents")
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return docs, nil
}

// GetByID returns one document. id may be an ObjectID hex or a plain string id.
func (r *RecordDocumentRepository) GetByID(ctx context.Context, id string) (*models.RecordDocument, error) {
	raw, err := r.coll.FindOne(ctx, idFilter(id)).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrRecordNotFound
		}
		logger.Error().Err(err).Str("id", id).Msg("Error getting record document")
		return nil, fmt.Errorf("error getting record: %w", err)
	}
	return decodeRecordDocument(raw), nil
}

// SaveRecord replaces the whole mentorForm of an existing document and
// returns the new update time
func (r *RecordDocumentRepository) SaveRecord(ctx context.Context, id string, rec models.StudentRecord) (time.Time, error) {
	updated := r.now()
	res, err := r.coll.UpdateOne(ctx, idFilter(id), bson.M{
		"$set": bson.M{fieldMentorForm: rec, fieldUpdated: updated},
	})
	if err != nil {
		logger.Error().Err(err).Str("id", id).Msg("Error saving record document")
		return time.Time{}, fmt.Errorf("error saving record: %w", err)
	}
	if res.MatchedCount == 0 {
		return time.Time{}, apperrors.ErrRecordNotFound
	}
	return updated, nil
}

// UpsertByEmail writes a record keyed by the student's college email,
// creating the document when none exists
func (r *RecordDocumentRepository) UpsertByEmail(ctx context.Context, email string, rec models.StudentRecord) (time.Time, error) {
	updated := r.now()
	_, err := r.coll.UpdateOne(ctx,
		bson.M{fieldEmail: strings.ToLower(email)},
		bson.M{"$set": bson.M{fieldMentorForm: rec, fieldUpdated: updated}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Error upserting record document")
		return time.Time{}, fmt.Errorf("error upserting record: %w", err)
	}
	return updated, nil
}

func idFilter(id string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{oid, id}}}
	}
	return bson.M{"_id": id}
}

func decodeRecordDocument(raw bson.Raw) *models.RecordDocument {
	doc := &models.RecordDocument{}

	idVal := raw.Lookup("_id")
	if oid, ok := idVal.ObjectIDOK(); ok {
		doc.ID = oid.Hex()
	} else if s, ok := idVal.StringValueOK(); ok {
		doc.ID = s
	} else {
		doc.ID = strings.Trim(idVal.String(), `"`)
	}

	if s, ok := raw.Lookup(fieldEmail).StringValueOK(); ok {
		doc.Email = s
	}

	updated := raw.Lookup(fieldUpdated)
	if t, ok := updated.TimeOK(); ok {
		doc.Updated = t.UTC()
	} else if s, ok := updated.StringValueOK(); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			doc.Updated = t.UTC()
		}
	}

	doc.Record = decodeMentorForm(raw.Lookup(fieldMentorForm))
	if doc.Record.PersonalInfo.CollegeEmail == "" {
		doc.Record.PersonalInfo.CollegeEmail = doc.Email
	}
	return doc
}

func decodeMentorForm(v bson.RawValue) models.StudentRecord {
	switch v.Type {
	case bson.TypeEmbeddedDocument:
		data, err := bson.MarshalExtJSON(v.Document(), false, false)
		if err != nil {
			return models.NewStudentRecord()
		}
		return normalize.RecordJSON(data)
	case bson.TypeString:
		return normalize.RecordJSON([]byte(v.StringValue()))
	default:
		return models.NewStudentRecord()
	}
}
