package dbx

// PreparedStatement - Prepared statement query, registered on every pooled
// connection at setup time.
type PreparedStatement struct {
	Name  string
	Query string
}

// NewPreparedStatement - Create new Prepared Statement.
func NewPreparedStatement(name, query string) PreparedStatement {
	return PreparedStatement{Name: name, Query: query}
}

// GetName - name of the prepared statement.
func (p PreparedStatement) GetName() string {
	return p.Name
}

// GetQuery - query of the prepared statement.
func (p PreparedStatement) GetQuery() string {
	return p.Query
}
