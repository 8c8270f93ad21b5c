package thought

// Client-facing field paths that may be filtered or ordered on, mapped
// to columns.
var filterColumns = map[string]string{
	"createdBy.uid": "created_by_uid",
	"tag":           "tag",
	"epiphany":      "epiphany",
}

var orderColumns = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
}

type Query struct {
	Where   string
	Equals  string
	OrderBy string
	Desc    bool
}

func FilterColumn(field string) (string, bool) {
	c, ok := filterColumns[field]
	return c, ok
}

func OrderColumn(field string) (string, bool) {
	if field == "" {
		return "created_at", true
	}
	c, ok := orderColumns[field]
	return c, ok
}

func (q Query) order() string {
	col, _ := OrderColumn(q.OrderBy)
	if q.Desc {
		return col + " desc, id desc"
	}
	return col + " asc, id asc"
}
