package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/insert_snapshot.sql
var InsertSnapshot string

//go:embed queries/get_snapshot.sql
var GetSnapshot string

//go:embed queries/list_snapshots.sql
var ListSnapshots string
