// Package core provides the business logic for importing the geographic
// reference dataset (regions, subregions, countries, states, cities).
//
// This package is independent of any storage engine or transport. It can be
// used by the CLI, web handlers, or tests without modification; storage
// backends plug in through [Store] and CSV sources through [Fetcher].
//
// # Import Pipeline
//
// [Importer.Run] executes five stages in dependency order inside a single
// unit of work:
//
//  1. Regions     (regions.csv)
//  2. SubRegions  (subregions.csv)
//  3. Countries   (countries.csv)
//  4. States      (states.csv)
//  5. Cities      (cities.csv)
//
// Each stage fetches its resource, checks the header against the entity's
// [Layout], maps every row with the matching Map* function, and hands the
// batch to the [Writer]. Any failure aborts the whole run and the store
// rolls back, so the dataset is either fully refreshed or untouched.
//
// # Idempotence
//
// Rows whose primary key already exists are handled according to the
// [ConflictPolicy]. The default, [ConflictSkip], leaves existing rows
// untouched, which makes re-running an import safe.
//
// # Error Handling
//
// Failures are reported as typed errors ([FetchError], [ParseError],
// [SchemaError], [ReferentialError], [DuplicateError]). [MapError] turns any
// of them into a [UserMessage] with a support code:
//
//   - FETCH001: Source could not be downloaded
//   - PARSE001: A row could not be decoded
//   - SCHEMA001: A file is missing required columns
//   - REF001: A row references a parent that does not exist
//   - DUP001: A row collides with an existing primary key
//   - DB004-DB007: Database connectivity problems
package core
