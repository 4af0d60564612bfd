package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// FetchArticles returns knowledge articles for an account, optionally
// filtered to those whose tag list matches any of the given tags.
func (db *DB) FetchArticles(accountID string, tags []string) ([]models.Record, error) {
	query := `SELECT title, content, tags FROM knowledge_articles WHERE account_id = ?`
	args := []any{accountID}

	if len(tags) > 0 {
		clauses := make([]string, 0, len(tags))
		for _, tag := range tags {
			clauses = append(clauses, "tags LIKE ?")
			args = append(args, "%"+tag+"%")
		}
		query += " AND (" + strings.Join(clauses, " OR ") + ")"
	}
	query += " ORDER BY id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch articles for %s: %w", accountID, err)
	}
	defer rows.Close()

	var articles []models.Record
	for rows.Next() {
		var title, content, articleTags string
		if err := rows.Scan(&title, &content, &articleTags); err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, models.Record{
			"title":   title,
			"content": content,
			"tags":    articleTags,
		})
	}
	return articles, rows.Err()
}

// FetchPreviousTickets returns the earlier tickets raised by a user.
func (db *DB) FetchPreviousTickets(userID string) ([]models.Record, error) {
	rows, err := db.Query(`
		SELECT id, content, tags, metadata FROM tickets
		WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch previous tickets for %s: %w", userID, err)
	}
	defer rows.Close()

	var tickets []models.Record
	for rows.Next() {
		var id, content, tags, metadata string
		if err := rows.Scan(&id, &content, &tags, &metadata); err != nil {
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		tickets = append(tickets, models.Record{
			"ticket_id":      id,
			"ticket_content": content,
			"ticket_tags":    tags,
			"ticket_other":   metadata,
		})
	}
	return tickets, rows.Err()
}

// FetchReservations returns the reservations associated with a user.
func (db *DB) FetchReservations(userID string) ([]models.Record, error) {
	rows, err := db.Query(`
		SELECT id, details, status, notes FROM reservations
		WHERE user_id = ? ORDER BY id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch reservations for %s: %w", userID, err)
	}
	defer rows.Close()

	var reservations []models.Record
	for rows.Next() {
		var id, details, status, notes string
		if err := rows.Scan(&id, &details, &status, &notes); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, models.Record{
			"reservation_id":      id,
			"reservation_details": details,
			"reservation_status":  status,
			"reservation_other":   notes,
		})
	}
	return reservations, rows.Err()
}

// AvailableTags returns the distinct tags appearing on an account's
// knowledge articles, sorted. This is the source of the account's tag
// vocabulary.
func (db *DB) AvailableTags(accountID string) ([]string, error) {
	rows, err := db.Query(`SELECT tags FROM knowledge_articles WHERE account_id = ?`, accountID)
	if err != nil {
		return nil, fmt.Errorf("available tags for %s: %w", accountID, err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var tagList string
		if err := rows.Scan(&tagList); err != nil {
			return nil, fmt.Errorf("scan tags: %w", err)
		}
		for _, tag := range strings.Split(tagList, ",") {
			tag = strings.TrimSpace(tag)
			if tag != "" {
				seen[tag] = true
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// InsertAccount creates an account row. Used by seeding.
func (db *DB) InsertAccount(accountID, name string) error {
	_, err := db.Exec(`
		INSERT INTO accounts (account_id, name) VALUES (?, ?)
		ON CONFLICT(account_id) DO UPDATE SET name = excluded.name
	`, accountID, name)
	if err != nil {
		return fmt.Errorf("insert account %s: %w", accountID, err)
	}
	return nil
}

// InsertArticle creates a knowledge article row. Used by seeding.
func (db *DB) InsertArticle(id, accountID, title, content, tags string) error {
	_, err := db.Exec(`
		INSERT INTO knowledge_articles (id, account_id, title, content, tags)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			tags = excluded.tags
	`, id, accountID, title, content, tags)
	if err != nil {
		return fmt.Errorf("insert article %s: %w", id, err)
	}
	return nil
}

// InsertTicket creates a historical ticket row. Used by seeding.
func (db *DB) InsertTicket(id, accountID, userID, content, tags, metadata string) error {
	_, err := db.Exec(`
		INSERT INTO tickets (id, account_id, user_id, content, tags, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			content = excluded.content,
			tags = excluded.tags,
			metadata = excluded.metadata
	`, id, accountID, userID, content, tags, metadata)
	if err != nil {
		return fmt.Errorf("insert ticket %s: %w", id, err)
	}
	return nil
}

// InsertReservation creates a reservation row. Used by seeding.
func (db *DB) InsertReservation(id, userID, details, status, notes string) error {
	_, err := db.Exec(`
		INSERT INTO reservations (id, user_id, details, status, notes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			details = excluded.details,
			status = excluded.status,
			notes = excluded.notes
	`, id, userID, details, status, notes)
	if err != nil {
		return fmt.Errorf("insert reservation %s: %w", id, err)
	}
	return nil
}
