// Package models defines domain entities and persistence interfaces for the cinefetch harvest service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs shared across package boundaries
//   - [Movie] : One normalized catalog record; the unit every export format and the dashboard serve
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [HarvestRun] : One recorded harvest with target, outcome counts, terminal status, and export location
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
