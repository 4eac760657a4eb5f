package server

import (
	"html/template"
	"net/http"
	"sort"
	"strings"
)

// Operator page: the frps active clients and the domains routing to them,
// read straight from the directory's latest snapshot.
var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>FRPS Active Directory</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        table { border-collapse: collapse; width: 60%; }
        th, td { border: 1px solid #ccc; padding: 8px; text-align: left; }
        th { background: #f2f2f2; }
    </style>
</head>
<body>
    <h2>FRPS Active Clients and Domains</h2>
    <table>
        <tr><th>Client</th><th>Domains</th></tr>
        {{range .Rows}}
        <tr>
            <td>{{.Client}}</td>
            <td>{{.Domains}}</td>
        </tr>
        {{end}}
    </table>
</body>
</html>
`))

type indexRow struct {
	Client  string
	Domains string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := s.directory.Snapshot()
	rows := make([]indexRow, 0, len(snap.Clients))
	for client, domains := range snap.Clients {
		row := indexRow{Client: client, Domains: "-"}
		if len(domains) > 0 {
			row.Domains = strings.Join(domains, ", ")
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Client < rows[j].Client })

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, struct{ Rows []indexRow }{Rows: rows}); err != nil {
		s.log.Error("index render failed", "err", err)
	}
}
