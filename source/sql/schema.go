package sql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DefaultTablePrefix prefixes every mirror table name.
const DefaultTablePrefix = "mb_"

// Mirror tables, without prefix.
const (
	tableOrganization = "organization"
	tableEntity       = "entity"
	tableAttribute    = "attribute"
	tableOptionSet    = "optionset"
	tableOption       = "option"
	tableRelationship = "relationship"
	tableLabel        = "label"
	tableMessageRow   = "messagerow"
)

// schema is portable across sqlite, postgres and mysql. Identifiers are
// stored as text.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS {{organization}} (
		languagecode INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS {{entity}} (
		metadataid VARCHAR(36) NOT NULL PRIMARY KEY,
		logicalname VARCHAR(128) NOT NULL,
		schemaname VARCHAR(128) NOT NULL,
		collectionname VARCHAR(128) NOT NULL DEFAULT '',
		entitysetname VARCHAR(128) NOT NULL DEFAULT '',
		objecttypecode INTEGER NULL,
		isintersect BOOLEAN NOT NULL DEFAULT FALSE,
		primaryidattribute VARCHAR(128) NOT NULL DEFAULT '',
		primarynameattribute VARCHAR(128) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS {{attribute}} (
		metadataid VARCHAR(36) NOT NULL,
		entity VARCHAR(128) NOT NULL,
		position INTEGER NOT NULL,
		logicalname VARCHAR(128) NOT NULL,
		schemaname VARCHAR(128) NOT NULL,
		type VARCHAR(32) NOT NULL,
		attributeof VARCHAR(128) NOT NULL DEFAULT '',
		validforcreate BOOLEAN NOT NULL DEFAULT FALSE,
		validforread BOOLEAN NOT NULL DEFAULT FALSE,
		validforupdate BOOLEAN NOT NULL DEFAULT FALSE,
		isprimaryid BOOLEAN NOT NULL DEFAULT FALSE,
		deprecatedversion VARCHAR(32) NOT NULL DEFAULT '',
		targets VARCHAR(1024) NOT NULL DEFAULT '',
		optionset VARCHAR(36) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS {{optionset}} (
		metadataid VARCHAR(36) NOT NULL PRIMARY KEY,
		name VARCHAR(128) NOT NULL,
		type VARCHAR(32) NOT NULL,
		isglobal BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS {{option}} (
		optionset VARCHAR(36) NOT NULL,
		position INTEGER NOT NULL,
		value INTEGER NOT NULL,
		invariantname VARCHAR(128) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS {{relationship}} (
		metadataid VARCHAR(36) NOT NULL PRIMARY KEY,
		kind VARCHAR(16) NOT NULL,
		schemaname VARCHAR(128) NOT NULL,
		referencedentity VARCHAR(128) NOT NULL DEFAULT '',
		referencedattribute VARCHAR(128) NOT NULL DEFAULT '',
		referencingentity VARCHAR(128) NOT NULL DEFAULT '',
		referencingattribute VARCHAR(128) NOT NULL DEFAULT '',
		entity1 VARCHAR(128) NOT NULL DEFAULT '',
		entity1attribute VARCHAR(128) NOT NULL DEFAULT '',
		entity2 VARCHAR(128) NOT NULL DEFAULT '',
		entity2attribute VARCHAR(128) NOT NULL DEFAULT '',
		intersectentity VARCHAR(128) NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS {{label}} (
		owner VARCHAR(64) NOT NULL,
		field VARCHAR(32) NOT NULL,
		languagecode INTEGER NOT NULL,
		label TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS {{messagerow}} (
		position INTEGER NOT NULL,
		messageid VARCHAR(36) NOT NULL,
		name VARCHAR(256) NOT NULL,
		isprivate BOOLEAN NOT NULL DEFAULT FALSE,
		customizationlevel INTEGER NOT NULL DEFAULT 0,
		pairid VARCHAR(36) NOT NULL,
		pairnamespace VARCHAR(256) NOT NULL DEFAULT '',
		requestid VARCHAR(36) NOT NULL,
		requestname VARCHAR(256) NOT NULL DEFAULT '',
		requestfieldname VARCHAR(256) NOT NULL DEFAULT '',
		requestfieldoptional BOOLEAN NOT NULL DEFAULT FALSE,
		requestfieldparser VARCHAR(256) NOT NULL DEFAULT '',
		requestfieldclrparser VARCHAR(256) NOT NULL DEFAULT '',
		requestfieldposition INTEGER NULL,
		responseid VARCHAR(36) NOT NULL,
		responsefieldvalue VARCHAR(256) NOT NULL DEFAULT '',
		responsefieldformatter VARCHAR(256) NOT NULL DEFAULT '',
		responsefieldclrformatter VARCHAR(256) NOT NULL DEFAULT '',
		responsefieldname VARCHAR(256) NOT NULL DEFAULT '',
		responsefieldposition INTEGER NULL,
		filterid VARCHAR(36) NOT NULL,
		primaryobjecttypecode INTEGER NOT NULL DEFAULT 0,
		secondaryobjecttypecode INTEGER NOT NULL DEFAULT 0
	)`,
}

// tables lists the mirror tables in creation order.
var tables = []string{
	tableOrganization, tableEntity, tableAttribute, tableOptionSet,
	tableOption, tableRelationship, tableLabel, tableMessageRow,
}

// CreateSchema creates the mirror tables when they do not exist.
func CreateSchema(ctx context.Context, db *sqlx.DB, prefix string) error {
	for _, ddl := range schema {
		for _, t := range tables {
			ddl = strings.ReplaceAll(ddl, "{{"+t+"}}", prefix+t)
		}
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("sql source: create schema: %w", err)
		}
	}
	return nil
}
