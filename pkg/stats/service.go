package stats

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tomeline/tomeline/pkg/models"
	"github.com/uptrace/bun"
)

// Overview is the whole stats page in one response, recomputed from the
// ledger on every request.
type Overview struct {
	TotalBooks     int      `json:"total_books"`
	WantToRead     int      `json:"want_to_read"`
	Reading        int      `json:"reading"`
	Completed      int      `json:"completed"`
	Wishlist       int      `json:"wishlist"`
	TotalPagesRead int      `json:"total_pages_read"`
	AverageRating  *float64 `json:"average_rating"`
	UniqueAuthors  int      `json:"unique_authors"`
	TopAuthor      *string  `json:"top_author"`
	ThisYearReads  int      `json:"this_year_reads"`
	TotalReads     int      `json:"total_reads"`

	MonthlyTimeline    []MonthBucket `json:"monthly_timeline"`
	GenreDistribution  []NameCount   `json:"genre_distribution"`
	AuthorDistribution []NameCount   `json:"author_distribution"`
}

// MonthBucket is one calendar month of finished reads.
type MonthBucket struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// Overview aggregates a user's library and reading history.
func (svc *Service) Overview(ctx context.Context, userID int) (*Overview, error) {
	return svc.overviewAt(ctx, userID, time.Now())
}

// overviewAt is Overview with an injectable clock for the month buckets.
func (svc *Service) overviewAt(ctx context.Context, userID int, now time.Time) (*Overview, error) {
	userBooks := []*models.UserBook{}
	err := svc.db.
		NewSelect().
		Model(&userBooks).
		Relation("Book").
		Where("ub.user_id = ?", userID).
		OrderExpr("(SELECT b.created_at FROM books AS b WHERE b.id = ub.book_id) ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	finished := []*models.ReadingSession{}
	err = svc.db.
		NewSelect().
		Model(&finished).
		Where("rs.user_id = ?", userID).
		Where("rs.finished_at IS NOT NULL").
		Order("rs.finished_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	overview := &Overview{
		MonthlyTimeline:    monthlyTimeline(finished, now),
		GenreDistribution:  []NameCount{},
		AuthorDistribution: []NameCount{},
	}

	var ratingSum, ratingCount int
	genreCounts := map[string]int{}
	genreOrder := []string{}
	authorCounts := map[string]int{}
	authorOrder := []string{}

	for _, ub := range userBooks {
		switch ub.Status {
		case models.StatusWantToRead:
			overview.WantToRead++
		case models.StatusReading:
			overview.Reading++
		case models.StatusCompleted:
			overview.Completed++
		case models.StatusWishlist:
			overview.Wishlist++
		}

		if ub.Status == models.StatusWishlist {
			continue
		}
		overview.TotalBooks++

		if ub.Status == models.StatusCompleted {
			// The book's page count counts once, no matter how many times it
			// was re-read.
			if ub.Book != nil && ub.Book.PageCount != nil {
				overview.TotalPagesRead += *ub.Book.PageCount
			}
			if ub.Rating != nil {
				ratingSum += *ub.Rating
				ratingCount++
			}
		}

		if ub.Book == nil {
			continue
		}

		if ub.Book.Genre != nil && *ub.Book.Genre != "" {
			if _, seen := genreCounts[*ub.Book.Genre]; !seen {
				genreOrder = append(genreOrder, *ub.Book.Genre)
			}
			genreCounts[*ub.Book.Genre]++
		}

		author := strings.TrimSpace(ub.Book.Author)
		if author != "" {
			if _, seen := authorCounts[author]; !seen {
				authorOrder = append(authorOrder, author)
			}
			authorCounts[author]++
		}
	}

	if ratingCount > 0 {
		avg := float64(ratingSum) / float64(ratingCount)
		overview.AverageRating = &avg
	}

	for _, genre := range genreOrder {
		overview.GenreDistribution = append(overview.GenreDistribution, NameCount{Name: genre, Count: genreCounts[genre]})
	}

	overview.UniqueAuthors = len(authorOrder)
	for _, author := range authorOrder {
		overview.AuthorDistribution = append(overview.AuthorDistribution, NameCount{Name: author, Count: authorCounts[author]})
		// First encountered wins ties, so strictly-greater is the right
		// comparison here.
		if overview.TopAuthor == nil || authorCounts[author] > authorCounts[*overview.TopAuthor] {
			name := author
			overview.TopAuthor = &name
		}
	}

	overview.TotalReads = len(finished)
	for _, session := range finished {
		if session.FinishedAt.Year() == now.Year() {
			overview.ThisYearReads++
		}
	}

	return overview, nil
}

// monthlyTimeline buckets finished sessions into the last 12 calendar months,
// oldest month first. Both month boundaries are inclusive of the sessions
// that fall inside them.
func monthlyTimeline(finished []*models.ReadingSession, now time.Time) []MonthBucket {
	buckets := make([]MonthBucket, 0, 12)
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -11, 0)

	index := map[[2]int]int{}
	for i := 0; i < 12; i++ {
		month := start.AddDate(0, i, 0)
		buckets = append(buckets, MonthBucket{Year: month.Year(), Month: int(month.Month())})
		index[[2]int{month.Year(), int(month.Month())}] = i
	}

	for _, session := range finished {
		finishedAt := session.FinishedAt.In(now.Location())
		if i, ok := index[[2]int{finishedAt.Year(), int(finishedAt.Month())}]; ok {
			buckets[i].Count++
		}
	}

	return buckets
}
