package migrate

// sqliteSchema mirrors the Postgres migrations for local SQLite deployments.
// IDs are assigned app-side, so no column defaults are needed for keys.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT,
  avatar_url TEXT,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS groups (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  created_by TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS group_members (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  role TEXT NOT NULL DEFAULT 'member',
  joined_at DATETIME,
  CONSTRAINT group_members_group_user_key UNIQUE (group_id, user_id)
);`,
	`CREATE INDEX IF NOT EXISTS group_members_user_id_idx ON group_members (user_id);`,
	`CREATE TABLE IF NOT EXISTS group_schedules (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  movie_id INTEGER NOT NULL,
  movie_title TEXT NOT NULL,
  movie_poster TEXT,
  movie_overview TEXT,
  scheduled_date DATETIME,
  release_date TEXT,
  first_air_date TEXT,
  media_type TEXT NOT NULL DEFAULT 'movie',
  watched INTEGER NOT NULL DEFAULT 0,
  genres TEXT NOT NULL DEFAULT '{}',
  release_year INTEGER,
  created_at DATETIME,
  CONSTRAINT group_schedules_group_movie_key UNIQUE (group_id, movie_id)
);`,
	`CREATE INDEX IF NOT EXISTS group_schedules_group_id_idx ON group_schedules (group_id);`,
	`CREATE TABLE IF NOT EXISTS schedule_votes (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL REFERENCES group_schedules(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  created_at DATETIME,
  CONSTRAINT schedule_votes_schedule_user_key UNIQUE (schedule_id, user_id)
);`,
	`CREATE INDEX IF NOT EXISTS schedule_votes_schedule_id_idx ON schedule_votes (schedule_id);`,
	`CREATE TABLE IF NOT EXISTS schedule_interests (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL REFERENCES group_schedules(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  vote_type INTEGER NOT NULL CHECK (vote_type IN (-1, 1)),
  created_at DATETIME,
  updated_at DATETIME,
  CONSTRAINT schedule_interests_schedule_user_key UNIQUE (schedule_id, user_id)
);`,
	`CREATE INDEX IF NOT EXISTS schedule_interests_schedule_id_idx ON schedule_interests (schedule_id);`,
	`CREATE TABLE IF NOT EXISTS invite_links (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  code TEXT NOT NULL,
  created_by TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  expires_at DATETIME,
  max_uses INTEGER,
  uses_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  CONSTRAINT invite_links_code_key UNIQUE (code)
);`,
	`CREATE INDEX IF NOT EXISTS invite_links_group_id_idx ON invite_links (group_id);`,
	`CREATE TABLE IF NOT EXISTS group_activities (
  id TEXT PRIMARY KEY,
  group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
  user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
  action TEXT NOT NULL,
  movie_title TEXT,
  created_at DATETIME
);`,
	`CREATE INDEX IF NOT EXISTS group_activities_feed_idx ON group_activities (group_id, created_at DESC, id DESC);`,
}

// SQLiteSchema returns the DDL statements for a SQLite deployment, in order.
func SQLiteSchema() []string {
	out := make([]string, len(sqliteSchema))
	copy(out, sqliteSchema)
	return out
}
