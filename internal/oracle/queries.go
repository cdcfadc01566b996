package oracle

// Data dictionary queries. All user input goes through bind variables.
// Object names are lowercased in SQL so the cache and the resolver can
// compare case-insensitively typed source text against one canonical
// form; item names stay uppercase because APEX items are conventionally
// referenced uppercase.

const queryItems = `
select upper(item_name) item_name
  from apex_application_page_items
 union
select upper(item_name) item_name
  from apex_application_items`

const queryOwnedPackages = `
select lower(object_name) package_name, '' owner, 'OWNED' visibility
  from user_objects
 where object_type = 'PACKAGE'
   and (:since is null or last_ddl_time > to_date(:since, 'YYYY-MM-DD HH24:MI:SS'))`

const queryGrantedPackages = `
select lower(privs.table_name) package_name, lower(privs.grantor) owner, 'GRANTED' visibility
  from user_tab_privs privs
 where privs.owner != 'SYS'
   and privs.type = 'PACKAGE'`

// The public branch is appended with a generated bind list for the
// configured synonym names.
const queryPublicPackagesPrefix = `
select lower(syn.synonym_name) package_name, '' owner, 'PUBLIC' visibility
  from all_synonyms syn
  join all_objects obj on syn.table_name = obj.object_name
 where obj.object_type = 'PACKAGE'
   and syn.synonym_name in (%s)`

const queryLibraryPackages = `
select distinct lower(syn.synonym_name) package_name
  from all_synonyms syn
  join all_objects obj on syn.table_name = obj.object_name
 where syn.synonym_name like 'APEX\_%' escape '\'
   and obj.object_type = 'PACKAGE'
 order by package_name`

const queryPackageMethods = `
select lower(proc.procedure_name) procedure_name, proc.subprogram_id
  from all_procedures proc
 where lower(proc.object_name) = :name
   and proc.procedure_name is not null
   and (:owner is null or lower(proc.owner) = :owner)
 order by proc.subprogram_id`

const queryLibraryMethods = `
select lower(proc.procedure_name) procedure_name, proc.subprogram_id
  from all_synonyms syn
  join all_objects obj on syn.table_name = obj.object_name
  join all_procedures proc on proc.object_name = obj.object_name
 where syn.synonym_name = upper(:name)
   and obj.object_type = 'PACKAGE'
   and proc.procedure_name is not null
 order by proc.subprogram_id`

const queryStandaloneMethods = `
select lower(object_name) procedure_name, subprogram_id, '' owner
  from user_procedures
 where object_type != 'PACKAGE'
 union
select lower(privs.table_name) procedure_name, proc.subprogram_id, lower(privs.grantor) owner
  from user_tab_privs privs
  join all_procedures proc on proc.object_name = privs.table_name
 where privs.owner != 'SYS'
   and privs.owner != user
   and privs.type not in ('PACKAGE', 'VIEW')`

const queryPackageVariables = `
select lower(regexp_substr(src.text, '^\s*(\w+)', 1, 1, null, 1)) variable_name,
       trim(regexp_substr(src.text, ':=\s*(.+?)\s*;', 1, 1, null, 1)) variable_value
  from all_source src
 where lower(src.name) = :name
   and src.type = 'PACKAGE'
   and (:owner is null or lower(src.owner) = :owner)
   and regexp_like(src.text, '^\s*\w+\s+constant\s', 'i')
 order by src.line`

const queryPackageArguments = `
select lower(arg.argument_name) argument_name, lower(arg.data_type) data_type
  from all_arguments arg
 where lower(arg.package_name) = :package_name
   and lower(arg.object_name) = :method_name
   and arg.subprogram_id = :id
   and (:owner is null or lower(arg.owner) = :owner)
 order by arg.position`

const queryLibraryArguments = `
with library_package as (
  select table_name package_name
    from all_synonyms
   where synonym_name = upper(:package_name)
)
select lower(arg.argument_name) argument_name, lower(arg.data_type) data_type
  from all_arguments arg
  join library_package lib on arg.package_name = lib.package_name
 where lower(arg.object_name) = :method_name
   and arg.subprogram_id = :id
 order by arg.position`

const queryStandaloneArguments = `
select lower(arg.argument_name) argument_name, lower(arg.data_type) data_type
  from all_arguments arg
 where arg.package_name is null
   and lower(arg.object_name) = :method_name
   and arg.subprogram_id = :id
 order by arg.position`

const queryVersion = `
select version_no from apex_release`

const queryClock = `
select to_char(systimestamp, 'YYYY-MM-DD HH24:MI:SS') from dual`
