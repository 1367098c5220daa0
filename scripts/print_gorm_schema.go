package main

import (
	"fmt"
	"log"
	"os"

	"github.com/cydxin/social-sdk/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Usage:
//
//	go run ./scripts/print_gorm_schema.go
//
// 不连接数据库，只打印 GORM 解析出的表结构；设置 SN_DSN 时额外打印线上 SHOW COLUMNS 做对比。
func main() {
	dsn := os.Getenv("SN_DSN")
	live := dsn != ""
	if !live {
		dsn = "root@tcp(127.0.0.1:3306)/social_db"
	}

	db, err := gorm.Open(mysql.New(mysql.Config{DSN: dsn, SkipInitializeWithVersion: !live}),
		&gorm.Config{DryRun: !live, DisableAutomaticPing: !live})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}

	tables := []any{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
		&models.Notification{},
		&models.Friendship{},
	}
	for _, t := range tables {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(t); err != nil {
			log.Fatalf("parse %T: %v", t, err)
		}

		fmt.Printf("=== %s ===\n", stmt.Schema.Table)
		for _, f := range stmt.Schema.Fields {
			if f.DBName == "" {
				continue
			}
			fmt.Printf("%-16s %-24s %s\n", f.DBName, db.Dialector.DataTypeOf(f), f.Tag.Get("gorm"))
		}

		if live {
			printLiveColumns(db, stmt.Schema.Table)
		}
		fmt.Println()
	}
}

// printLiveColumns 对比数据库里真实的列
func printLiveColumns(db *gorm.DB, table string) {
	type col struct {
		Field string
		Type  string
		Null  string
		Key   string
	}
	var cols []col
	if err := db.Raw("SHOW COLUMNS FROM " + table).Scan(&cols).Error; err != nil {
		fmt.Printf("SHOW COLUMNS FROM %s failed: %v\n", table, err)
		return
	}
	fmt.Printf("--- SHOW COLUMNS FROM %s ---\n", table)
	for _, c := range cols {
		fmt.Printf("%s\t%s\t%s\t%s\n", c.Field, c.Type, c.Null, c.Key)
	}
}
