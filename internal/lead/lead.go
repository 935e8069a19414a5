// Package lead defines the lead record read from the warehouse, its mapping
// from a raw result set, and its projection onto the processed output table.
package lead

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadetl/internal/categorize"
	"leadetl/internal/ddl"
)

// Source and output column names.
const (
	ColHashedID         = "LEAD_HASHED_ID"
	ColJoinedDate       = "CAMPAIGN_JOINED_DATE"
	ColIndustry         = "LEAD_INDUSTRY"
	ColCountry          = "COUNTRY"
	ColRegion           = "REGION"
	ColCampaignName     = "CAMPAIGN_NAME"
	ColLeadSource       = "LEAD_SOURCE"
	ColSourceCategory   = "SOURCE_CATEGORY"
	ColLeadStatus       = "LEAD_STATUS"
	ColJobTitle         = "JOB_TITLE_CLEANED"
	ColJobCategory      = "JOB_CATEGORY"
	ColIndustryCategory = "LEAD_INDUSTRY_CATEGORY"
)

// ErrMissingColumn is returned when the source lacks a column the job
// transforms.
var ErrMissingColumn = errors.New("lead: missing required column")

// Record is one lead. Text fields are nullable; a NULL stays NULL through
// normalization and is written back as NULL.
type Record struct {
	HashedID       sql.NullString
	JoinedDate     sql.NullTime
	Industry       sql.NullString
	Country        sql.NullString
	Region         sql.NullString
	CampaignName   sql.NullString
	LeadSource     sql.NullString
	SourceCategory sql.NullString
	LeadStatus     sql.NullString
	JobTitle       sql.NullString

	JobCategory      categorize.Label
	IndustryCategory categorize.Label
}

// Dataset is the ordered set of leads of one run.
type Dataset []Record

// requiredColumns are the columns the job rewrites.
var requiredColumns = []string{ColJobTitle, ColIndustry}

// OutputColumns is the processed table schema, in order.
var OutputColumns = []ddl.ColumnDef{
	{Name: ColHashedID, Type: ddl.TypeText, Nullable: true},
	{Name: ColJoinedDate, Type: ddl.TypeDate, Nullable: true},
	{Name: ColIndustry, Type: ddl.TypeText, Nullable: true},
	{Name: ColCountry, Type: ddl.TypeText, Nullable: true},
	{Name: ColRegion, Type: ddl.TypeText, Nullable: true},
	{Name: ColCampaignName, Type: ddl.TypeText, Nullable: true},
	{Name: ColLeadSource, Type: ddl.TypeText, Nullable: true},
	{Name: ColSourceCategory, Type: ddl.TypeText, Nullable: true},
	{Name: ColLeadStatus, Type: ddl.TypeText, Nullable: true},
	{Name: ColJobCategory, Type: ddl.TypeText, Nullable: true},
	{Name: ColIndustryCategory, Type: ddl.TypeText, Nullable: true},
}

// OutputTable returns the processed table definition named fqn.
func OutputTable(fqn string) ddl.TableDef {
	cols := make([]ddl.ColumnDef, len(OutputColumns))
	copy(cols, OutputColumns)
	return ddl.TableDef{FQN: fqn, Columns: cols}
}

// FromRows maps a raw result set into a Dataset. Columns are matched by
// case-insensitive name; unknown columns are ignored and absent optional
// columns leave fields NULL.
func FromRows(columns []string, rows [][]any) (Dataset, error) {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[strings.ToUpper(strings.TrimSpace(c))] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	text := func(row []any, col string) (sql.NullString, error) {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return sql.NullString{}, nil
		}
		return nullString(row[i])
	}

	ds := make(Dataset, 0, len(rows))
	for n, row := range rows {
		var (
			rec Record
			err error
		)
		fields := []struct {
			col string
			dst *sql.NullString
		}{
			{ColHashedID, &rec.HashedID},
			{ColIndustry, &rec.Industry},
			{ColCountry, &rec.Country},
			{ColRegion, &rec.Region},
			{ColCampaignName, &rec.CampaignName},
			{ColLeadSource, &rec.LeadSource},
			{ColSourceCategory, &rec.SourceCategory},
			{ColLeadStatus, &rec.LeadStatus},
			{ColJobTitle, &rec.JobTitle},
		}
		for _, f := range fields {
			if *f.dst, err = text(row, f.col); err != nil {
				return nil, fmt.Errorf("lead: row %d column %s: %w", n+1, f.col, err)
			}
		}
		if i, ok := idx[ColJoinedDate]; ok && i < len(row) {
			if rec.JoinedDate, err = nullDate(row[i]); err != nil {
				return nil, fmt.Errorf("lead: row %d column %s: %w", n+1, ColJoinedDate, err)
			}
		}
		ds = append(ds, rec)
	}
	return ds, nil
}

// Values returns the record projected onto OutputColumns. NULLs are nil,
// dates are time.Time at UTC midnight.
func (r Record) Values() []any {
	return []any{
		nullable(r.HashedID),
		date(r.JoinedDate),
		nullable(r.Industry),
		nullable(r.Country),
		nullable(r.Region),
		nullable(r.CampaignName),
		nullable(r.LeadSource),
		nullable(r.SourceCategory),
		nullable(r.LeadStatus),
		string(r.JobCategory),
		string(r.IndustryCategory),
	}
}

// Project returns every record's Values, in dataset order.
func (ds Dataset) Project() [][]any {
	out := make([][]any, len(ds))
	for i, r := range ds {
		out[i] = r.Values()
	}
	return out
}

func nullable(s sql.NullString) any {
	if !s.Valid {
		return nil
	}
	return s.String
}

func date(t sql.NullTime) any {
	if !t.Valid {
		return nil
	}
	return t.Time
}

func nullString(v any) (sql.NullString, error) {
	switch t := v.(type) {
	case nil:
		return sql.NullString{}, nil
	case string:
		return sql.NullString{String: t, Valid: true}, nil
	case []byte:
		return sql.NullString{String: string(t), Valid: true}, nil
	case time.Time:
		return sql.NullString{String: t.Format(time.DateOnly), Valid: true}, nil
	}
	var ns sql.NullString
	if err := ns.Scan(v); err != nil {
		return sql.NullString{}, err
	}
	return ns, nil
}

// dateLayouts are the textual date forms drivers hand back.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func nullDate(v any) (sql.NullTime, error) {
	switch t := v.(type) {
	case nil:
		return sql.NullTime{}, nil
	case time.Time:
		return sql.NullTime{Time: truncateDay(t), Valid: true}, nil
	case []byte:
		return parseDate(string(t))
	case string:
		return parseDate(t)
	}
	return sql.NullTime{}, fmt.Errorf("unsupported date value of type %T", v)
}

func parseDate(s string) (sql.NullTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullTime{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return sql.NullTime{Time: truncateDay(t), Valid: true}, nil
		}
	}
	return sql.NullTime{}, fmt.Errorf("unparseable date %q", s)
}

// truncateDay keeps the calendar date as written, at UTC midnight.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
